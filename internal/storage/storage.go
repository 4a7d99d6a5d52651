// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// The service layer should not know or care which database it is
// talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change the driver name in the config. Zero service changes.
//
//   - Writing tests = pass a fake/stub that satisfies the interface.
//
// Every method takes a context.Context. The context carries the lifetime
// of ONE inbound request, so each call is its own unit of work; nothing
// is shared between requests except the connection pool.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-management/internal/types"
)

// Sentinel errors returned by every implementation. Callers compare with
// errors.Is, so implementations are free to wrap them with more detail.
var (
	ErrNotFound      = errors.New("student not found")
	ErrAlreadyExists = errors.New("student already exists")
)

// Storage is the persistence-context contract.
type Storage interface {
	// ListStudents returns every student, ordered by id.
	// Returns an empty slice (not nil) if there are no students.
	ListStudents(ctx context.Context) ([]types.Student, error)

	// GetStudent fetches a single student by primary key, or ErrNotFound.
	GetStudent(ctx context.Context, id int64) (types.Student, error)

	// CreateStudent inserts a new row and returns it as stored. A zero ID
	// is assigned by the store; a taken ID yields ErrAlreadyExists.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// UpdateStudent replaces first name, last name and age of the row
	// identified by student.ID, or returns ErrNotFound.
	UpdateStudent(ctx context.Context, student types.Student) error

	// DeleteStudent removes a row permanently, or returns ErrNotFound.
	DeleteStudent(ctx context.Context, id int64) error

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}
