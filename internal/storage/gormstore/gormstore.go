// Package gormstore implements storage.Storage on top of the gorm ORM so
// the same service can run against SQLite or PostgreSQL.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// Supported dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Store keeps one *gorm.DB for the process; every call derives a
// request-scoped session from it with WithContext.
type Store struct {
	db *gorm.DB
}

// Open connects using the given dialect and DSN and makes sure the
// students table exists.
func Open(dialect, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("gormstore.Open: dsn must not be empty")
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("gormstore.Open: unsupported dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore.Open: connect: %w", err)
	}

	return New(db)
}

// New wraps an already opened connection.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&types.Student{}); err != nil {
		return nil, fmt.Errorf("gormstore.New: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// ListStudents returns every student ordered by id.
func (s *Store) ListStudents(ctx context.Context) ([]types.Student, error) {
	students := make([]types.Student, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("ListStudents: %w", err)
	}
	return students, nil
}

// GetStudent returns storage.ErrNotFound when no row has the id.
func (s *Store) GetStudent(ctx context.Context, id int64) (types.Student, error) {
	var student types.Student
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Student{}, fmt.Errorf("GetStudent: id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudent: %w", err)
	}
	return student, nil
}

// CreateStudent checks the id inside the same transaction as the insert;
// the duplicated-key translation covers a concurrent insert racing past
// the check.
func (s *Store) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if student.ID != 0 {
			var count int64
			if err := tx.Model(&types.Student{}).Where("id = ?", student.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return storage.ErrAlreadyExists
			}
		}
		return tx.Create(&student).Error
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return types.Student{}, fmt.Errorf("CreateStudent: id %d: %w", student.ID, storage.ErrAlreadyExists)
		}
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}
	return student, nil
}

// UpdateStudent writes through a column map so a zero age is stored too;
// a struct argument would make gorm skip zero fields.
func (s *Store) UpdateStudent(ctx context.Context, student types.Student) error {
	result := s.db.WithContext(ctx).Model(&types.Student{}).
		Where("id = ?", student.ID).
		Updates(map[string]interface{}{
			"first_name": student.FirstName,
			"last_name":  student.LastName,
			"age":        student.Age,
		})
	if result.Error != nil {
		return fmt.Errorf("UpdateStudent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("UpdateStudent: id %d: %w", student.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteStudent removes the row; storage.ErrNotFound if nothing was deleted.
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&types.Student{}, id)
	if result.Error != nil {
		return fmt.Errorf("DeleteStudent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("DeleteStudent: id %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// Ping checks the underlying connection pool is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	return nil
}
