// Package spreadsheet moves student records in and out of .xlsx workbooks.
//
// Layout: the first sheet, a header row, then one student per row with
// columns Id, FirstName, LastName, Age. An empty Id cell lets the store
// assign one on import.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aanand-mishra/student-management/internal/types"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Students"

// FirstDataRow is the spreadsheet row number of the first student.
const FirstDataRow = 2

var header = []string{"Id", "FirstName", "LastName", "Age"}

// ErrNoSheets is returned for a workbook without any sheet.
var ErrNoSheets = errors.New("workbook does not contain any sheets")

// Write renders students as a workbook into w.
func Write(w io.Writer, students []types.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("spreadsheet.Write: rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("spreadsheet.Write: header: %w", err)
	}

	for i, s := range students {
		cell, err := excelize.CoordinatesToCellName(1, FirstDataRow+i)
		if err != nil {
			return fmt.Errorf("spreadsheet.Write: row %d: %w", FirstDataRow+i, err)
		}
		row := []interface{}{s.ID, s.FirstName, s.LastName, s.Age}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("spreadsheet.Write: row %d: %w", FirstDataRow+i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("spreadsheet.Write: %w", err)
	}
	return nil
}

// Row is a student read from a workbook with the sheet row it sits on.
type Row struct {
	Line    int
	Student types.Student
}

// Read parses the first sheet of the workbook in r. Rows whose cells are
// all empty are skipped; a non-numeric Id or Age is an error naming the row.
func Read(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet.Read: open: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet.Read: sheet %s: %w", name, err)
	}

	students := make([]Row, 0, len(rows))
	for i, row := range rows {
		if i < FirstDataRow-1 {
			continue
		}
		if blank(row) {
			continue
		}

		s, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("spreadsheet.Read: row %d: %w", i+1, err)
		}
		students = append(students, Row{Line: i + 1, Student: s})
	}

	return students, nil
}

func parseRow(row []string) (types.Student, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var s types.Student
	if v := cell(0); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return types.Student{}, fmt.Errorf("invalid id %q", v)
		}
		s.ID = id
	}
	s.FirstName = cell(1)
	s.LastName = cell(2)
	if v := cell(3); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return types.Student{}, fmt.Errorf("invalid age %q", v)
		}
		s.Age = age
	}
	return s, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
