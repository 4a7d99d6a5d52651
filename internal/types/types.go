// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, service, storage and spreadsheet can all import types without
// depending on each other.
package types

// Student represents a student record in our system.
//
// Struct tags serve three purposes:
//
//  1. json:"..."     — how the field appears in request/response bodies
//     (camelCase to match the public API).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty.
//
//  3. gorm:"..."     — column mapping used by the ORM-backed store.
//     The raw SQL store maps the same columns by hand.
type Student struct {
	// ID may be supplied by the caller. Zero means "let the store assign one".
	ID        int64  `json:"id"        validate:"min=0"    gorm:"column:id;primaryKey;autoIncrement"`
	FirstName string `json:"firstName" validate:"required" gorm:"column:first_name;not null"`
	LastName  string `json:"lastName"  validate:"required" gorm:"column:last_name;not null"`
	Age       int    `json:"age"       validate:"min=0"    gorm:"column:age;not null"`
}

// TableName pins the ORM table to the same one the SQL store creates.
func (Student) TableName() string {
	return "students"
}
