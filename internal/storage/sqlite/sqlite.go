// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It is the default backend for local development and tests.
//
// The sqlite3 import registers the "sqlite3" driver with database/sql in
// its init() function, and also gives us the typed sqlite3.Error so we
// can recognise primary-key violations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path (the configured connection
// string), creates the students table if it does not already exist, and
// returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup. If the table already exists nothing happens.
	//
	// Schema:
	//   id         — integer primary key; caller-supplied or assigned
	//   first_name — student's given name
	//   last_name  — student's family name
	//   age        — student's age in years
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT    NOT NULL,
			last_name  TEXT    NOT NULL,
			age        INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts a new row into the students table.
//
// Two shapes of INSERT are used:
//   - ID == 0 → the column is left out and SQLite picks the next rowid.
//   - ID  > 0 → the caller's id is written as-is; if it is taken the
//     PRIMARY KEY constraint fires and we report storage.ErrAlreadyExists.
//
// Placeholders (?) keep user input out of the SQL text.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	var (
		result sql.Result
		err    error
	)

	if student.ID == 0 {
		result, err = s.Db.ExecContext(ctx,
			"INSERT INTO students (first_name, last_name, age) VALUES (?, ?, ?)",
			student.FirstName, student.LastName, student.Age,
		)
	} else {
		result, err = s.Db.ExecContext(ctx,
			"INSERT INTO students (id, first_name, last_name, age) VALUES (?, ?, ?, ?)",
			student.ID, student.FirstName, student.LastName, student.Age,
		)
	}
	if err != nil {
		if isConstraintViolation(err) {
			return types.Student{}, fmt.Errorf("CreateStudent: id %d: %w", student.ID, storage.ErrAlreadyExists)
		}
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	// LastInsertId returns the primary key of the new row — either the
	// caller's id or the one SQLite generated.
	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	student.ID = lastID
	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudent fetches exactly one student row matched by primary key.
//
// QueryRow returns a single-row result; Scan reads the columns IN ORDER
// into the pointers we pass. A missing row surfaces as sql.ErrNoRows only
// when Scan is called.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudent(ctx context.Context, id int64) (types.Student, error) {
	var student types.Student

	err := s.Db.QueryRowContext(ctx,
		"SELECT id, first_name, last_name, age FROM students WHERE id = ? LIMIT 1",
		id,
	).Scan(
		&student.ID,
		&student.FirstName,
		&student.LastName,
		&student.Age,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("GetStudent: id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudent: scan: %w", err)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ListStudents returns all student rows as a slice.
//
// Query (unlike QueryRow) returns *sql.Rows — a cursor over multiple rows.
// Always defer rows.Close() to release the database connection.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) ListStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT id, first_name, last_name, age FROM students ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("ListStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the API encodes [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.FirstName,
			&student.LastName,
			&student.Age,
		); err != nil {
			return nil, fmt.Errorf("ListStudents: scan row: %w", err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStudent replaces a student's fields with the provided values.
// SQLite reports every matched row in RowsAffected, so zero means the id
// does not exist.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdateStudent(ctx context.Context, student types.Student) error {
	result, err := s.Db.ExecContext(ctx,
		"UPDATE students SET first_name = ?, last_name = ?, age = ? WHERE id = ?",
		student.FirstName, student.LastName, student.Age, student.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateStudent: exec: %w", err)
	}

	return checkAffected("UpdateStudent", student.ID, result)
}

// DeleteStudent removes a student row by primary key.
func (s *SQLite) DeleteStudent(ctx context.Context, id int64) error {
	result, err := s.Db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudent: exec: %w", err)
	}

	return checkAffected("DeleteStudent", id, result)
}

// Ping verifies the database file can still be reached.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func checkAffected(op string, id int64, result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: id %d: %w", op, id, storage.ErrNotFound)
	}
	return nil
}

// isConstraintViolation reports whether err is a PRIMARY KEY / UNIQUE
// violation raised by the sqlite3 driver.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
