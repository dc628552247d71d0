package store

const schema = `
CREATE TABLE IF NOT EXISTS apps (
    pos INTEGER PRIMARY KEY,
    extid TEXT NOT NULL,
    app_id TEXT NOT NULL,
    arch TEXT NOT NULL,
    branch TEXT NOT NULL,
    version TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    license TEXT NOT NULL,
    origin TEXT NOT NULL,
    collection TEXT NOT NULL,
    installation TEXT NOT NULL,
    install_size TEXT NOT NULL,
    runtime TEXT NOT NULL,
    sdk TEXT NOT NULL,
    commit_id TEXT NOT NULL,
    parent TEXT NOT NULL,
    subject TEXT NOT NULL,
    build_date TEXT NOT NULL,
    install_date TEXT NOT NULL,
    location TEXT NOT NULL,
    depends TEXT NOT NULL,
    url TEXT NOT NULL,
    provides TEXT NOT NULL,
    packager TEXT NOT NULL,
    list_state INTEGER NOT NULL DEFAULT 0,
    info_state INTEGER NOT NULL DEFAULT 0,
    location_state INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_apps_extid ON apps(extid);
`

// appColumns lists every apps column after pos, in scan order.
const appColumns = `extid, app_id, arch, branch, version, name, description, license,
    origin, collection, installation, install_size, runtime, sdk, commit_id,
    parent, subject, build_date, install_date, location, depends, url,
    provides, packager, list_state, info_state, location_state`
