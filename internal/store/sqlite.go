// Package store provides SQLite-backed and in-memory implementations of
// agenda.TaskStore and agenda.LinkStore.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO required
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// createdLayout sorts lexically in creation order.
const createdLayout = "2006-01-02T15:04:05.000000"

const schema = `
CREATE TABLE IF NOT EXISTS links (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	url         TEXT    NOT NULL,
	folder_path TEXT,
	created_at  TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	title              TEXT    NOT NULL,
	description        TEXT,
	due_iso            TEXT    NOT NULL,
	recurrence         TEXT    NOT NULL DEFAULT 'once',
	folder_path        TEXT,
	priority           INTEGER NOT NULL DEFAULT 0,
	sort_index         INTEGER NOT NULL DEFAULT 0,
	last_notified_date TEXT,
	completed          INTEGER NOT NULL DEFAULT 0,
	created_at         TEXT    NOT NULL
);`

const taskColumns = `id, title, description, due_iso, recurrence, folder_path,
	priority, sort_index, last_notified_date, completed, created_at`

// SQLiteStore implements agenda.TaskStore and agenda.LinkStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and returns a
// Store. Parent directories are created as needed.
func New(path string) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: an in-memory database lives per connection, and a
	// single-user agenda never needs parallel writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 10000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// ── Tasks ────────────────────────────────────────────────────────────────────

func (s *SQLiteStore) CreateTask(ctx context.Context, t *agenda.Task) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, due_iso, recurrence, folder_path,
		                    priority, sort_index, last_notified_date, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, nullString(t.Description), agenda.FormatTimestamp(t.Due), string(t.Recurrence),
		nullString(t.Folder), int(t.Priority), t.Rank, nullString(t.Notified.String()),
		boolToInt(t.Completed), t.CreatedAt.Format(createdLayout),
	)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

// ListTasks returns tasks in priority-first storage order.
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]*agenda.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY priority DESC, due_iso ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*agenda.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*agenda.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, agenda.ErrNotFound)
	}
	return t, err
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, t *agenda.Task) error {
	return s.exec(ctx,
		`UPDATE tasks SET title=?, description=?, due_iso=?, recurrence=?, folder_path=?, priority=?
		 WHERE id=?`,
		t.Title, nullString(t.Description), agenda.FormatTimestamp(t.Due), string(t.Recurrence),
		nullString(t.Folder), int(t.Priority), t.ID,
	)
}

// SwapRanks exchanges two ranks inside one transaction.
func (s *SQLiteStore) SwapRanks(ctx context.Context, a, b int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var rankA, rankB int64
	if err := tx.QueryRowContext(ctx, `SELECT sort_index FROM tasks WHERE id=?`, a).Scan(&rankA); err != nil {
		return notFound(err)
	}
	if err := tx.QueryRowContext(ctx, `SELECT sort_index FROM tasks WHERE id=?`, b).Scan(&rankB); err != nil {
		return notFound(err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET sort_index=? WHERE id=?`, rankB, a); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET sort_index=? WHERE id=?`, rankA, b); err != nil {
		return err
	}
	return tx.Commit()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return agenda.ErrNotFound
	}
	return err
}

func (s *SQLiteStore) UpdateNotified(ctx context.Context, id int64, m agenda.Marker) error {
	return s.exec(ctx, `UPDATE tasks SET last_notified_date=? WHERE id=?`, nullString(m.String()), id)
}

func (s *SQLiteStore) SetCompleted(ctx context.Context, id int64, completed bool) error {
	return s.exec(ctx, `UPDATE tasks SET completed=? WHERE id=?`, boolToInt(completed), id)
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	return err
}

// ── Links ────────────────────────────────────────────────────────────────────

func (s *SQLiteStore) CreateLink(ctx context.Context, l *agenda.Link) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO links (name, url, folder_path, created_at) VALUES (?, ?, ?, ?)`,
		l.Name, l.URL, nullString(l.Folder), l.CreatedAt.Format(createdLayout),
	)
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

// ListLinks returns links newest first.
func (s *SQLiteStore) ListLinks(ctx context.Context) ([]*agenda.Link, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, folder_path, created_at FROM links ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*agenda.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (s *SQLiteStore) GetLink(ctx context.Context, id int64) (*agenda.Link, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, url, folder_path, created_at FROM links WHERE id=?`, id)
	l, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("link %d: %w", id, agenda.ErrNotFound)
	}
	return l, err
}

func (s *SQLiteStore) UpdateLink(ctx context.Context, l *agenda.Link) error {
	return s.exec(ctx, `UPDATE links SET name=?, url=?, folder_path=? WHERE id=?`,
		l.Name, l.URL, nullString(l.Folder), l.ID)
}

func (s *SQLiteStore) DeleteLink(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE id=?`, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// exec runs an update that must touch exactly the identified row.
func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return agenda.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*agenda.Task, error) {
	t := &agenda.Task{}
	var (
		description, folder, notified sql.NullString
		dueISO, recurrence, createdAt string
		priority, completed           int
	)
	if err := sc.Scan(&t.ID, &t.Title, &description, &dueISO, &recurrence, &folder,
		&priority, &t.Rank, &notified, &completed, &createdAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Folder = folder.String
	t.Recurrence = agenda.Recurrence(recurrence)
	t.Priority = agenda.Priority(priority)
	t.Notified = agenda.ParseMarker(notified.String)
	t.Completed = completed != 0
	// An unparseable due value leaves Due zero; the reminder engine skips it.
	t.Due, _ = agenda.ParseFlexibleTimestamp(dueISO)
	t.CreatedAt, _ = agenda.ParseFlexibleTimestamp(createdAt)
	return t, nil
}

func scanLink(sc scanner) (*agenda.Link, error) {
	l := &agenda.Link{}
	var folder sql.NullString
	var createdAt string
	if err := sc.Scan(&l.ID, &l.Name, &l.URL, &folder, &createdAt); err != nil {
		return nil, err
	}
	l.Folder = folder.String
	l.CreatedAt, _ = agenda.ParseFlexibleTimestamp(createdAt)
	return l, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
