// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (storage)
//  2. Returns a function with the exact signature the router needs
//
// Because the inner function "closes over" the outer parameters, it can
// access `storage` even after the factory call has returned. Example:
//
//	router.HandleFunc("POST /api/students", student.New(storage))
//	//                                              ^^^^^^^^^^^^^
//	//                         New(storage) is called ONCE at startup.
//	//                         It returns a handler func which is called
//	//                         on EVERY incoming request.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/franklin-edu/students-api/internal/storage"
	"github.com/franklin-edu/students-api/internal/types"
	"github.com/franklin-edu/students-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// validate is shared across requests. The notblank rule comes from the
// validator package's non-standard set and fails whitespace-only
// strings, which "required" alone lets through.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err) // a broken tag registration is a programmer error
	}
	return v
}

// BasePath is the collection URI all Student routes hang off. The
// Location header on 201 responses is built from it.
const BasePath = "/api/students"

// Conflict messages served as plain text with a 400, matching the
// wording clients already depend on.
const (
	msgIDOnCreate = "don't include an id when creating a student"
	msgIDMismatch = "path id and body id must match"
	msgInvalidID  = "invalid id: must be a positive integer"
	msgBlankName  = "name must not be blank"
	msgEmptyBody  = "request body is empty"
)

// parseID extracts and validates the {id} path parameter. Ids are
// positive integers; anything else is a client error caught here,
// before any storage call.
func parseID(r *http.Request) (int64, error) {
	intID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || intID <= 0 {
		return 0, errors.New(msgInvalidID)
	}
	return intID, nil
}

// decodeStudent reads and validates a Student payload from the request
// body. Field constraints (non-blank name/phone, grade in [1,12]) are
// enforced here so no invalid record ever reaches the store. Returns
// the error Response to send when validation fails.
func decodeStudent(r *http.Request) (types.Student, *response.Response) {
	var student types.Student

	err := json.NewDecoder(r.Body).Decode(&student)
	if errors.Is(err, io.EOF) {
		resp := response.GeneralError(errors.New(msgEmptyBody))
		return student, &resp
	}
	if err != nil {
		resp := response.GeneralError(err)
		return student, &resp
	}

	// validator checks all validate:"..." tags on the struct and
	// returns one FieldError per broken rule.
	if err := validate.Struct(student); err != nil {
		validateErrs := err.(validator.ValidationErrors)
		resp := response.ValidationError(validateErrs)
		return student, &resp
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Request body (JSON) — id must be absent or null:
//
//	{ "name": "Ada", "phone": "555-0100", "grade": 9, "license": null }
//
// Success response (201 Created) — Location: /api/students/{new id}:
//
//	{ "id": 1, "name": "Ada", "phone": "555-0100", "grade": 9, "license": null }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, failed validation,
//	                   or a body that already carries an id (plain text)
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		student, errResp := decodeStudent(r)
		if errResp != nil {
			response.WriteJSON(w, http.StatusBadRequest, *errResp)
			return
		}

		// The store assigns ids; a client-supplied id is an identity
		// conflict, rejected before any storage call.
		if student.ID != nil {
			http.Error(w, msgIDOnCreate, http.StatusBadRequest)
			return
		}

		lastID, err := store.CreateStudent(
			student.Name, student.Phone, student.Grade, student.License)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))

		student.ID = &lastID
		response.Location(w, BasePath, lastID)
		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
// Fetches a single student by primary key.
//
// Success response (200 OK) — Link: </api/students/1>; rel="self":
//
//	{ "id": 1, "name": "Ada", "phone": "555-0100", "grade": 9, "license": null }
//
// Error responses:
//
//	400 Bad Request  — id is not a positive integer
//	404 Not Found    — no student with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting a student", slog.String("id", r.PathValue("id")))

		intID, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student, err := store.GetStudentByID(intID)
		if err != nil {
			writeLookupError(w, err, "error getting student")
			return
		}

		response.SelfLink(w, r)
		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByName handles GET /api/students/search/{name}
// Fetches the first student whose name matches case-insensitively:
// a record created as "Ada" is found by "ada" and "ADA" alike.
//
// Error responses:
//
//	400 Bad Request  — blank name
//	404 Not Found    — no student with that name
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByName(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		slog.Info("searching for a student", slog.String("name", name))

		if strings.TrimSpace(name) == "" {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New(msgBlankName)))
			return
		}

		student, err := store.GetStudentByName(name)
		if err != nil {
			writeLookupError(w, err, "error searching student")
			return
		}

		response.SelfLink(w, r)
		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns a JSON array of all students in the database.
//
// Returns an empty array [] (not null) when there are no students —
// an empty collection is still a 200.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents()
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.SelfLink(w, r)
		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetRandom handles GET /api/students/random
// Returns one student chosen uniformly at random, or 404 when the
// store is empty. With exactly one record it always returns that one.
// ─────────────────────────────────────────────────────────────────────────────
func GetRandom(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting a random student")

		student, err := store.GetRandomStudent()
		if err != nil {
			writeLookupError(w, err, "error getting random student")
			return
		}

		response.SelfLink(w, r)
		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL of name, phone, grade, and license of an existing
// student — a full overwrite, not a merge. The id never changes; a
// body id that differs from the path id is rejected.
//
// Request body (JSON) — id may be null or equal to the path id:
//
//	{ "id": null, "name": "Ada", "phone": "555-0199", "grade": 10, "license": "B" }
//
// Success response (200 OK) — the record as stored.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, validation failure,
//	                   or path/body id mismatch (plain text)
//	404 Not Found    — no student with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("updating a student", slog.String("id", r.PathValue("id")))

		intID, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student, errResp := decodeStudent(r)
		if errResp != nil {
			response.WriteJSON(w, http.StatusBadRequest, *errResp)
			return
		}

		if student.ID != nil && *student.ID != intID {
			http.Error(w, msgIDMismatch, http.StatusBadRequest)
			return
		}

		updated, err := store.UpdateStudentByID(intID, student)
		if err != nil {
			writeLookupError(w, err, "error updating student")
			return
		}

		slog.Info("student updated", slog.Int64("id", intID))
		response.SelfLink(w, r)
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Permanently removes a student record.
//
// Success response: 204 No Content with an empty body.
// Deleting an id that does not exist (including a second delete of the
// same id) is 404.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("deleting a student", slog.String("id", r.PathValue("id")))

		intID, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		deleted, err := store.DeleteStudentByID(intID)
		if err != nil {
			slog.Error("error deleting student",
				slog.Int64("id", intID),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		if !deleted {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(storage.ErrStudentNotFound))
			return
		}

		slog.Info("student deleted", slog.Int64("id", intID))
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeLookupError maps a storage error to the right status: the
// not-found signal becomes 404, anything else is a server-side 500.
func writeLookupError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, storage.ErrStudentNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}

	slog.Error(logMsg, slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
