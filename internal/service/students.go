// Package service implements the student use cases on top of the
// storage contract.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// Errors returned by Students. Handlers map them to HTTP status codes.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrStudentExists   = errors.New("student with this id already exists")
	ErrIDMismatch      = errors.New("id in path does not match id in body")
)

// Students is the students service: list, get, create, update, delete.
type Students struct {
	store    storage.Storage
	validate *validator.Validate
	log      *slog.Logger
}

// NewStudents constructs the service. The store is the only path to the
// backing database.
func NewStudents(store storage.Storage, validate *validator.Validate, log *slog.Logger) *Students {
	return &Students{
		store:    store,
		validate: validate,
		log:      log.With(slog.String("component", "students_service")),
	}
}

// List returns every stored student.
func (s *Students) List(ctx context.Context) ([]types.Student, error) {
	return s.store.ListStudents(ctx)
}

// Get returns the student with the given id or ErrStudentNotFound.
func (s *Students) Get(ctx context.Context, id int64) (types.Student, error) {
	student, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return types.Student{}, translate(err)
	}
	return student, nil
}

// Create validates and persists a new student. The returned record
// carries the store-assigned id when the caller sent none.
func (s *Students) Create(ctx context.Context, student types.Student) (types.Student, error) {
	if err := s.validate.Struct(student); err != nil {
		return types.Student{}, err
	}

	created, err := s.store.CreateStudent(ctx, student)
	if err != nil {
		return types.Student{}, translate(err)
	}

	s.log.Info("student created", slog.Int64("id", created.ID))
	return created, nil
}

// Update replaces first name, last name and age of student id. The body
// must name the same id as the path.
func (s *Students) Update(ctx context.Context, id int64, student types.Student) error {
	if id != student.ID {
		return fmt.Errorf("%w: path %d, body %d", ErrIDMismatch, id, student.ID)
	}
	if err := s.validate.Struct(student); err != nil {
		return err
	}

	if err := s.store.UpdateStudent(ctx, student); err != nil {
		return translate(err)
	}

	s.log.Info("student updated", slog.Int64("id", id))
	return nil
}

// Delete removes student id, or returns ErrStudentNotFound.
func (s *Students) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteStudent(ctx, id); err != nil {
		return translate(err)
	}

	s.log.Info("student deleted", slog.Int64("id", id))
	return nil
}

// RowError describes one record that could not be imported.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportRow is one student to import together with the row it came from.
type ImportRow struct {
	Row     int
	Student types.Student
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Imported int        `json:"imported"`
	Failed   []RowError `json:"failed"`
}

// Import creates each student in turn. A failing record does not stop
// the rest and is reported under its own row number.
func (s *Students) Import(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	result := ImportResult{Failed: make([]RowError, 0)}

	for _, row := range rows {
		if _, err := s.Create(ctx, row.Student); err != nil {
			var validationErrs validator.ValidationErrors
			if !errors.Is(err, ErrStudentExists) && !errors.As(err, &validationErrs) {
				// store failure: abort, the rest would fail the same way
				return result, err
			}
			result.Failed = append(result.Failed, RowError{Row: row.Row, Error: err.Error()})
			continue
		}
		result.Imported++
	}

	s.log.Info("students imported",
		slog.Int("imported", result.Imported),
		slog.Int("failed", len(result.Failed)))
	return result, nil
}

// Healthy reports whether the backing store answers.
func (s *Students) Healthy(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func translate(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrStudentNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return ErrStudentExists
	default:
		return err
	}
}
