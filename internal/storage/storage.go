// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) should not know or care which database they are
// talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero handler changes.
//
//   - Writing tests = pass a fake/mock that satisfies the interface.
//     No real database needed for unit tests.
//
// This is the Dependency Inversion Principle in practice.
package storage

import (
	"errors"

	"github.com/franklin-edu/students-api/internal/types"
)

// ErrStudentNotFound is the not-found signal: absence of a record is a
// normal outcome, not a failure, and the HTTP layer maps it to 404.
// Implementations wrap it (fmt.Errorf with %w) so callers check it
// with errors.Is rather than string matching.
var ErrStudentNotFound = errors.New("student not found")

// Storage is the database contract.
// Any concrete type that implements ALL of these methods automatically
// satisfies this interface — Go does this implicitly (no "implements"
// keyword required).
type Storage interface {
	// CreateStudent inserts a new student record and returns the auto-
	// generated primary-key ID. The caller is responsible for rejecting
	// bodies that already carry an id before reaching this point.
	CreateStudent(name string, phone string, grade int, license *string) (int64, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrStudentNotFound (wrapped) if no row matches.
	GetStudentByID(id int64) (types.Student, error)

	// GetStudentByName fetches the first student whose name matches the
	// argument case-insensitively. Ties resolve to the lowest id.
	// Returns ErrStudentNotFound (wrapped) if no row matches.
	GetStudentByName(name string) (types.Student, error)

	// GetStudents returns every student in the database.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() ([]types.Student, error)

	// GetRandomStudent returns one student chosen uniformly at random.
	// Returns ErrStudentNotFound (wrapped) if the table is empty.
	GetRandomStudent() (types.Student, error)

	// UpdateStudentByID overwrites name, phone, grade, and license of an
	// existing student — a full overwrite, never a partial merge — and
	// returns the stored record. The id itself never changes.
	// Returns ErrStudentNotFound (wrapped) if no row matches.
	UpdateStudentByID(id int64, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student record permanently and reports
	// whether a row was actually removed.
	DeleteStudentByID(id int64) (bool, error)
}
