package flatpak

// Sentinels and fixed formats shared by the parsers and the display layer.
const (
	// Unknown marks a version or license the backend did not report.
	Unknown = "?"
	// NotImplemented marks fields flatpak has no equivalent for.
	NotImplemented = "[not implemented]"
	// DependsPrefix is prepended to a runtime ref when listed as a dependency.
	DependsPrefix = "flatpak "
	// DescriptionIndent aligns description continuation lines with the
	// value column of a `pacman -Qi` block.
	DescriptionIndent = "                  "
	// NoMatchesSentinel is what `flatpak search` prints when nothing matched.
	NoMatchesSentinel = "No matches found"

	// SourceDateLayout is the layout of the Date field in `flatpak info`.
	SourceDateLayout = "2006-01-02 15:04:05 -0700"
	// DisplayDateLayout matches pacman's build and install dates.
	DisplayDateLayout = "Mon 02 Jan 2006 03:04:05 PM MST"
)

// Installation scopes reported by `flatpak info`.
const (
	InstallationSystem = "system"
	InstallationUser   = "user"
)

// Hydration tracks whether a group of fields has been fetched.
type Hydration uint8

const (
	// Unfetched means no command has been run for the group yet.
	Unfetched Hydration = iota
	// FetchedEmpty means the command ran but produced nothing usable.
	FetchedEmpty
	// Fetched means the group's fields hold backend data.
	Fetched
)

func (h Hydration) String() string {
	switch h {
	case Unfetched:
		return "unfetched"
	case FetchedEmpty:
		return "fetched-empty"
	case Fetched:
		return "fetched"
	default:
		return "unknown"
	}
}

// Done reports whether the group needs no further invocation.
func (h Hydration) Done() bool {
	return h != Unfetched
}

// App represents one installed or discoverable flatpak application.
type App struct {
	ID           string // reverse-DNS application id
	Arch         string
	Branch       string
	Version      string
	Name         string
	Description  string // may span several lines
	License      string
	Origin       string // remote the app was installed from
	Collection   string
	Installation string // "system" or "user"
	InstallSize  string
	Runtime      string
	Sdk          string
	Commit       string
	Parent       string
	Subject      string
	BuildDate    string
	InstallDate  string
	Location     string
	Depends      string
	URL          string
	Provides     string
	Packager     string

	// ListState covers Name and Version from the full list.
	ListState Hydration
	// InfoState covers everything parsed from `flatpak info`.
	InfoState Hydration
	// LocationState covers Location.
	LocationState Hydration
}

// ExtendedID returns the id/arch/branch key flatpak uses to address a
// specific variant of an app.
func (a *App) ExtendedID() string {
	return a.ID + "/" + a.Arch + "/" + a.Branch
}
