// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers —
// they always know what error responses look like.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field Name is required" }
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

// Status string constants — use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// json.NewEncoder(w) streams directly into w, avoiding an
	// intermediate buffer. Encode() appends a newline after the JSON.
	return json.NewEncoder(w).Encode(data)
}

// SelfLink annotates the response with a Link header pointing at the
// request's own resolved URI:
//
//	Link: </api/students/7>; rel="self"
//
// Call this BEFORE WriteJSON — headers are locked once the status line
// is written.
func SelfLink(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Link", fmt.Sprintf("<%s>; rel=%q", r.URL.RequestURI(), "self"))
}

// Location sets the Location header for a newly created resource,
// built from the collection base path and the assigned id:
//
//	Location: /api/students/7
func Location(w http.ResponseWriter, basePath string, id int64) {
	w.Header().Set("Location", fmt.Sprintf("%s/%d", strings.TrimRight(basePath, "/"), id))
}

// GeneralError wraps any Go error into our standard Response shape.
// Use this for unexpected errors (DB failures, decode errors, etc.)
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response.
//
// The go-playground/validator package returns one FieldError per
// failing struct field. We convert each to a plain English sentence
// naming the violated constraint and join them with ", " so the client
// sees a single descriptive error string.
//
// Example output:
//
//	{ "status": "error", "error": "field Name is required, field Grade must be at least 1" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		// "required" tag — field was missing or zero-valued
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		// "notblank" tag — field held only whitespace
		case "notblank":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must not be blank", e.Field()))
		// "min"/"max" tags — numeric range constraints (grade ∈ [1,12])
		case "min":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param()))
		case "max":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param()))
		// Catch-all for any other validation tag
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
