// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Student represents one student record.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON
//     (lowercase names match REST API conventions).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package before any storage call is made.
//
// ID and License are pointers on purpose:
//
//   - ID is nil until the store assigns one on create, and it must be
//     possible to tell "client sent an id" apart from "client sent 0".
//     A nil ID marshals to JSON null.
//   - License is optional with no constraint; nil marshals to null
//     rather than an empty string pretending to be a licence.
// The notblank tag (registered in the handler package) rejects
// whitespace-only values: "   " is not a name.
type Student struct {
	ID      *int64  `json:"id"`
	Name    string  `json:"name"  validate:"required,notblank"`
	Phone   string  `json:"phone" validate:"required,notblank"`
	Grade   int     `json:"grade" validate:"min=1,max=12"`
	License *string `json:"license"`
}
