package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/medreminder/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// reminderRow mirrors the reminders table.
type reminderRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Dosage       string `db:"dosage"`
	DueAt        string `db:"due_at"`
	Repeat       string `db:"repeat"`
	IntervalDays int    `db:"interval_days"`
	Notified     int    `db:"notified"`
	Taken        int    `db:"taken"`
	Enabled      int    `db:"enabled"`
}

const reminderColumns = `id, name, dosage, due_at, repeat, interval_days, notified, taken, enabled`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One connection: the poll loop and the UI both write, and an
	// in-memory database only exists on the connection that created it.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Create inserts a new reminder with a fresh UUID.
func (s *SQLiteStore) Create(ctx context.Context, r model.Reminder) (string, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, name, dosage, due_at, repeat, interval_days,
			notified, taken, enabled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Name, r.Dosage, model.FormatDue(r.DueAt), string(r.Repeat), r.IntervalDays,
		boolToInt(r.Notified), boolToInt(r.Taken), boolToInt(r.Enabled),
	)
	if err != nil {
		return "", fmt.Errorf("creating reminder: %w", err)
	}
	return id, nil
}

// Update applies the non-nil fields of f to reminder id.
func (s *SQLiteStore) Update(ctx context.Context, id string, f Fields) error {
	var sets []string
	var args []interface{}

	if f.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *f.Name)
	}
	if f.Dosage != nil {
		sets = append(sets, "dosage = ?")
		args = append(args, *f.Dosage)
	}
	if f.DueAt != nil {
		sets = append(sets, "due_at = ?")
		args = append(args, model.FormatDue(*f.DueAt))
	}
	if f.Repeat != nil {
		sets = append(sets, "repeat = ?")
		args = append(args, string(*f.Repeat))
	}
	if f.IntervalDays != nil {
		sets = append(sets, "interval_days = ?")
		args = append(args, *f.IntervalDays)
	}
	if f.Notified != nil {
		sets = append(sets, "notified = ?")
		args = append(args, boolToInt(*f.Notified))
	}
	if f.Taken != nil {
		sets = append(sets, "taken = ?")
		args = append(args, boolToInt(*f.Taken))
	}
	if f.Enabled != nil {
		sets = append(sets, "enabled = ?")
		args = append(args, boolToInt(*f.Enabled))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := "UPDATE reminders SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating reminder %s: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a reminder by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reminders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting reminder %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns every reminder ordered by due time.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Reminder, error) {
	var rows []reminderRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+reminderColumns+" FROM reminders ORDER BY due_at, name")
	if err != nil {
		return nil, fmt.Errorf("querying reminders: %w", err)
	}

	reminders := make([]model.Reminder, 0, len(rows))
	for _, row := range rows {
		r, err := row.toModel()
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}

// Get retrieves a single reminder by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Reminder, error) {
	var row reminderRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+reminderColumns+" FROM reminders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting reminder %s: %w", id, err)
	}

	r, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// MarkNotified flags the reminder as notified if its due time is unchanged
// and it is still enabled and not taken.
func (s *SQLiteStore) MarkNotified(ctx context.Context, id string, dueAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET notified = 1, updated_at = ?
		WHERE id = ? AND due_at = ? AND notified = 0 AND taken = 0 AND enabled = 1`,
		time.Now().UTC(), id, model.FormatDue(dueAt),
	)
	if err != nil {
		return false, fmt.Errorf("marking reminder %s notified: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (row reminderRow) toModel() (model.Reminder, error) {
	dueAt, err := model.ParseDue(row.DueAt)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("scanning reminder %s: %w", row.ID, err)
	}
	return model.Reminder{
		ID:           row.ID,
		Name:         row.Name,
		Dosage:       row.Dosage,
		DueAt:        dueAt,
		Repeat:       model.Repeat(row.Repeat),
		IntervalDays: row.IntervalDays,
		Notified:     row.Notified != 0,
		Taken:        row.Taken != 0,
		Enabled:      row.Enabled != 0,
	}, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
