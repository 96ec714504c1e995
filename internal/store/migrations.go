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

CREATE TABLE IF NOT EXISTS reminders (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	dosage        TEXT NOT NULL,
	due_at        TEXT NOT NULL,
	repeat        TEXT NOT NULL DEFAULT 'Once'
		CHECK(repeat IN ('Once', 'Daily', 'Weekly', 'Custom')),
	interval_days INTEGER NOT NULL DEFAULT 1,
	notified      INTEGER NOT NULL DEFAULT 0 CHECK(notified IN (0, 1)),
	taken         INTEGER NOT NULL DEFAULT 0 CHECK(taken IN (0, 1)),
	enabled       INTEGER NOT NULL DEFAULT 1 CHECK(enabled IN (0, 1)),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reminders_due_at ON reminders(due_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_reminders_pending
	ON reminders(enabled, notified, taken, due_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
