// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (the students service)
//  2. Returns a function with the exact signature the router needs
//
//	router.HandleFunc("POST /api/students", student.New(svc))
//	//                                              ^^^^^^^^
//	//                         New(svc) is called ONCE at startup.
//	//                         It returns a handler func which is called
//	//                         on EVERY incoming request.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-management/internal/service"
	"github.com/aanand-mishra/student-management/internal/spreadsheet"
	"github.com/aanand-mishra/student-management/internal/types"
	"github.com/aanand-mishra/student-management/internal/utils/response"
)

// BasePath is the collection URL; Location headers are built from it.
const BasePath = "/api/students"

// maxImportSize caps uploaded workbooks at 10 MiB.
const maxImportSize = 10 << 20

// Service is what the handlers need from the students service.
type Service interface {
	List(ctx context.Context) ([]types.Student, error)
	Get(ctx context.Context, id int64) (types.Student, error)
	Create(ctx context.Context, student types.Student) (types.Student, error)
	Update(ctx context.Context, id int64, student types.Student) error
	Delete(ctx context.Context, id int64) error
	Import(ctx context.Context, rows []service.ImportRow) (service.ImportResult, error)
	Healthy(ctx context.Context) error
}

// Register mounts every student route on router.
func Register(router *http.ServeMux, svc Service, log *slog.Logger) {
	router.HandleFunc("GET "+BasePath, GetList(svc, log))
	router.HandleFunc("POST "+BasePath, New(svc, log))
	router.HandleFunc("GET "+BasePath+"/export", Export(svc, log))
	router.HandleFunc("POST "+BasePath+"/import", Import(svc, log))
	router.HandleFunc("GET "+BasePath+"/{id}", GetByID(svc, log))
	router.HandleFunc("PUT "+BasePath+"/{id}", Update(svc, log))
	router.HandleFunc("DELETE "+BasePath+"/{id}", Delete(svc, log))
	router.HandleFunc("GET /healthz", Health(svc, log))
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "id": 3, "firstName": "Meeri", "lastName": "Meikäläinen", "age": 20 }
//
// Success response (201 Created, Location: /api/students/3): the stored
// student, including the id the store assigned if none was sent.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	409 Conflict     — a student with this id already exists
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("creating a student")

		student, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		created, err := svc.Create(r.Context(), student)
		if err != nil {
			writeServiceError(w, log, "error creating student", err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("%s/%d", BasePath, created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no student with this id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		log.Info("getting a student", slog.Int64("id", id))

		student, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, log, "error getting student", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns a JSON array of all students; [] (not null) when there are none.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("getting all students")

		students, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, log, "error getting students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces first name, last name and age of an existing student. The
// body's id must equal the path id.
//
// Success response: 204 No Content.
//
// Error responses:
//
//	400 Bad Request  — invalid id, id mismatch, empty body, or validation failure
//	404 Not Found    — no student with this id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		log.Info("updating a student", slog.Int64("id", id))

		student, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		if err := svc.Update(r.Context(), id, student); err != nil {
			writeServiceError(w, log, "error updating student", err)
			return
		}

		response.NoContent(w)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Permanently removes a student record.
//
// Success response: 204 No Content. 404 if the id does not exist.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		log.Info("deleting a student", slog.Int64("id", id))

		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, log, "error deleting student", err)
			return
		}

		response.NoContent(w)
	}
}

// Export handles GET /api/students/export and streams every student as
// an .xlsx workbook.
func Export(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("exporting students")

		students, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, log, "error exporting students", err)
			return
		}

		w.Header().Set("Content-Type", spreadsheet.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="students.xlsx"`)
		if err := spreadsheet.Write(w, students); err != nil {
			// Headers are gone by now; all we can do is log.
			log.Error("error writing workbook", slog.String("error", err.Error()))
		}
	}
}

// Import handles POST /api/students/import. The workbook is either the
// raw body or the "file" field of a multipart form. Rows that fail
// validation or collide with an existing id are reported, not fatal.
//
// Success response (200 OK):
//
//	{ "imported": 2, "failed": [ { "row": 4, "error": "..." } ] }
func Import(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("importing students")

		r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

		body, closeBody, err := importBody(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		defer closeBody()

		sheetRows, err := spreadsheet.Read(body)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		rows := make([]service.ImportRow, 0, len(sheetRows))
		for _, sr := range sheetRows {
			rows = append(rows, service.ImportRow{Row: sr.Line, Student: sr.Student})
		}

		result, err := svc.Import(r.Context(), rows)
		if err != nil {
			writeServiceError(w, log, "error importing students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, result)
	}
}

// Health handles GET /healthz.
func Health(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Healthy(r.Context()); err != nil {
			log.Error("storage unreachable", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.OK())
	}
}

// pathID parses {id}. On failure it writes the 400 itself.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

// decodeStudent reads a Student from the JSON body. On failure it writes
// the 400 itself.
func decodeStudent(w http.ResponseWriter, r *http.Request) (types.Student, bool) {
	var student types.Student

	err := json.NewDecoder(r.Body).Decode(&student)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return types.Student{}, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return types.Student{}, false
	}

	return student, true
}

func importBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving uploaded file: %w", err)
	}
	return file, func() { file.Close() }, nil
}

// writeServiceError maps the service error taxonomy onto status codes.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, msg string, err error) {
	var validateErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validateErrs):
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
	case errors.Is(err, service.ErrIDMismatch):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
	case errors.Is(err, service.ErrStudentNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
	case errors.Is(err, service.ErrStudentExists):
		response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
	default:
		log.Error(msg, slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}
