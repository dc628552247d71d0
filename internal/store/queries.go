package store

import (
	"database/sql"
	"fmt"

	"github.com/blackwell-systems/pacpak/internal/flatpak"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Replace discards every record and stores apps in their given order. It
// runs in a single transaction and bumps the generation, so every Ref
// handed out before the call becomes stale.
func (s *Store) Replace(apps []*flatpak.App) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM apps`); err != nil {
		return fmt.Errorf("failed to clear apps: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO apps (pos, ` + appColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for pos, app := range apps {
		args := append([]any{pos}, appValues(app)...)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert app %s: %w", app.ExtendedID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit apps: %w", err)
	}
	s.gen++
	return nil
}

// Get returns a copy of the record behind ref.
func (s *Store) Get(ref Ref) (*flatpak.App, error) {
	if err := s.check(ref); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`SELECT `+appColumns+` FROM apps WHERE pos = ?`, ref.Pos)
	app, err := scanApp(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ref %d: %w", ref.Pos, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app %d: %w", ref.Pos, err)
	}
	return app, nil
}

// Update overwrites the record behind ref with app.
func (s *Store) Update(ref Ref, app *flatpak.App) error {
	if err := s.check(ref); err != nil {
		return err
	}

	query := `
		UPDATE apps SET
			extid = ?, app_id = ?, arch = ?, branch = ?, version = ?, name = ?,
			description = ?, license = ?, origin = ?, collection = ?, installation = ?,
			install_size = ?, runtime = ?, sdk = ?, commit_id = ?, parent = ?,
			subject = ?, build_date = ?, install_date = ?, location = ?, depends = ?,
			url = ?, provides = ?, packager = ?, list_state = ?, info_state = ?,
			location_state = ?
		WHERE pos = ?
	`
	args := append(appValues(app), ref.Pos)
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update app %s: %w", app.ExtendedID(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update app %s: %w", app.ExtendedID(), err)
	}
	if n == 0 {
		return fmt.Errorf("ref %d: %w", ref.Pos, ErrNotFound)
	}
	return nil
}

// Len returns the number of records.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM apps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count apps: %w", err)
	}
	return n, nil
}

// Refs returns a Ref for every record in ascending position order.
func (s *Store) Refs() ([]Ref, error) {
	rows, err := s.db.Query(`SELECT pos FROM apps ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	var refs []Ref
	for rows.Next() {
		var pos int
		if err := rows.Scan(&pos); err != nil {
			return nil, fmt.Errorf("failed to scan app position: %w", err)
		}
		refs = append(refs, Ref{Pos: pos, Gen: s.gen})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apps: %w", err)
	}
	return refs, nil
}

// List returns every record with its Ref, in ascending position order.
func (s *Store) List() ([]Ref, []*flatpak.App, error) {
	rows, err := s.db.Query(`SELECT pos, ` + appColumns + ` FROM apps ORDER BY pos`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	var (
		refs []Ref
		apps []*flatpak.App
	)
	for rows.Next() {
		var pos int
		app, err := scanApp(rows, &pos)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan app: %w", err)
		}
		refs = append(refs, Ref{Pos: pos, Gen: s.gen})
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating apps: %w", err)
	}
	return refs, apps, nil
}

// FindByExtendedID returns the first record whose id/arch/branch equals extid.
func (s *Store) FindByExtendedID(extid string) (Ref, *flatpak.App, error) {
	row := s.db.QueryRow(`SELECT pos, `+appColumns+` FROM apps WHERE extid = ? ORDER BY pos LIMIT 1`, extid)
	var pos int
	app, err := scanApp(row, &pos)
	if err == sql.ErrNoRows {
		return Ref{}, nil, fmt.Errorf("app %s: %w", extid, ErrNotFound)
	}
	if err != nil {
		return Ref{}, nil, fmt.Errorf("failed to find app %s: %w", extid, err)
	}
	return Ref{Pos: pos, Gen: s.gen}, app, nil
}

// appValues returns the column values for app in appColumns order.
func appValues(app *flatpak.App) []any {
	return []any{
		app.ExtendedID(),
		app.ID,
		app.Arch,
		app.Branch,
		app.Version,
		app.Name,
		app.Description,
		app.License,
		app.Origin,
		app.Collection,
		app.Installation,
		app.InstallSize,
		app.Runtime,
		app.Sdk,
		app.Commit,
		app.Parent,
		app.Subject,
		app.BuildDate,
		app.InstallDate,
		app.Location,
		app.Depends,
		app.URL,
		app.Provides,
		app.Packager,
		int(app.ListState),
		int(app.InfoState),
		int(app.LocationState),
	}
}

// scanApp reads one row in appColumns order. Any extra leading
// destinations (such as pos) are scanned first.
func scanApp(row rowScanner, lead ...any) (*flatpak.App, error) {
	var app flatpak.App
	var extid string
	var listState, infoState, locationState int
	dest := append(lead,
		&extid,
		&app.ID,
		&app.Arch,
		&app.Branch,
		&app.Version,
		&app.Name,
		&app.Description,
		&app.License,
		&app.Origin,
		&app.Collection,
		&app.Installation,
		&app.InstallSize,
		&app.Runtime,
		&app.Sdk,
		&app.Commit,
		&app.Parent,
		&app.Subject,
		&app.BuildDate,
		&app.InstallDate,
		&app.Location,
		&app.Depends,
		&app.URL,
		&app.Provides,
		&app.Packager,
		&listState,
		&infoState,
		&locationState,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	app.ListState = flatpak.Hydration(listState)
	app.InfoState = flatpak.Hydration(infoState)
	app.LocationState = flatpak.Hydration(locationState)
	return &app, nil
}
