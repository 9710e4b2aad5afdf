package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"taskchat/internal/task"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db     *sql.DB
	driver string
}

// NewDefaultStore opens the store described by STORE_DRIVER / STORE_DSN.
// Without either it falls back to a tasks.db SQLite file next to the binary,
// created on first run.
func NewDefaultStore() (*Store, error) {
	driver := os.Getenv("STORE_DRIVER")
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := os.Getenv("STORE_DSN")
	if dsn == "" {
		switch driver {
		case "mysql":
			dsn = "root:123456@tcp(127.0.0.1:3306)/tasks?parseTime=true"
		default:
			dsn = "tasks.db"
		}
	}
	return Open(driver, dsn)
}

func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    description TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    reminder TEXT
)`
	if s.driver == "mysql" {
		ddl = `CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    description TEXT NOT NULL,
    completed TINYINT NOT NULL DEFAULT 0,
    reminder VARCHAR(64) NULL
)`
	}
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new task with completed=false and returns the stored row.
// The description must be non-empty after trimming.
func (s *Store) Create(ctx context.Context, description string, reminder *string) (task.Task, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return task.Task{}, task.Invalid("description is required")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (description, completed, reminder) VALUES (?, ?, ?)`,
		desc, 0, reminder)
	if err != nil {
		return task.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, err
	}
	return s.Get(ctx, id)
}

// Insert stores a full task snapshot as a new row (new id) and returns it.
// Used to restore the last deleted task.
func (s *Store) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	completed := 0
	if t.Completed {
		completed = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (description, completed, reminder) VALUES (?, ?, ?)`,
		t.Description, completed, t.Reminder)
	if err != nil {
		return task.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (task.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, description, completed, reminder FROM tasks WHERE id=?`, id)
	return scanTask(row)
}

// List returns all tasks ordered by ascending id. The slice is never nil so
// an empty table serializes as [].
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, completed, reminder FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update applies only the fields present in u, leaving others unchanged.
// An empty description keeps the prior value rather than failing.
func (s *Store) Update(ctx context.Context, id int64, u task.Update) (task.Task, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if u.Completed != nil {
		cur.Completed = *u.Completed
	}
	if u.Description != nil {
		if desc := strings.TrimSpace(*u.Description); desc != "" {
			cur.Description = desc
		}
	}
	if u.ReminderSet {
		cur.Reminder = u.Reminder
	}
	completed := 0
	if cur.Completed {
		completed = 1
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET description=?, completed=?, reminder=? WHERE id=?`,
		cur.Description, completed, cur.Reminder, id)
	if err != nil {
		return task.Task{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the row and returns the removed task's snapshot so the
// caller can keep it for undo.
func (s *Store) Delete(ctx context.Context, id int64) (task.Task, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id); err != nil {
		return task.Task{}, err
	}
	return snap, nil
}

// Reset removes all tasks unconditionally.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var completed int
	var reminder sql.NullString
	if err := row.Scan(&t.ID, &t.Description, &completed, &reminder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, fmt.Errorf("task: %w", task.ErrNotFound)
		}
		return task.Task{}, err
	}
	t.Completed = completed != 0
	if reminder.Valid {
		r := reminder.String
		t.Reminder = &r
	}
	return t, nil
}
