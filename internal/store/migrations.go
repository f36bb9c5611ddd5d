package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS plants (
	id                 TEXT PRIMARY KEY,
	plant_name         TEXT NOT NULL,
	category           TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	care_level         TEXT NOT NULL DEFAULT '',
	watering_frequency TEXT NOT NULL DEFAULT '',
	last_watered_date  TEXT NOT NULL DEFAULT '',
	next_watering_date TEXT NOT NULL DEFAULT '',
	health_status      TEXT NOT NULL DEFAULT '',
	owner_name         TEXT NOT NULL DEFAULT '',
	owner_email        TEXT NOT NULL DEFAULT '',
	image_url          TEXT NOT NULL DEFAULT '',
	synced_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	plant_id   TEXT NOT NULL,
	day        TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (plant_id, day)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_plants_owner_email ON plants(owner_email COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_plants_next_watering ON plants(next_watering_date);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
