// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It is fast enough for most projects and trivial to set up.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this automatically when the package
// is loaded — we never call anything from it directly.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/franklin-edu/students-api/internal/config"
	"github.com/franklin-edu/students-api/internal/storage"
	"github.com/franklin-edu/students-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	// Without this the sql.Open("sqlite3", ...) call would fail with
	// "unknown driver".
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at the path specified in cfg.StoragePath,
// creates the students table if it does not already exist, and returns
// a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	// The first actual connection happens on the first query.
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup. If the table already exists nothing happens.
	//
	// Schema:
	//   id      — integer primary key, auto-incremented by SQLite
	//   name    — student's full name, never empty
	//   phone   — contact phone number, never empty
	//   grade   — school grade, 1 through 12 (validated before insert)
	//   license — driving licence, nullable: most students have none
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			name    TEXT    NOT NULL,
			phone   TEXT    NOT NULL,
			grade   INTEGER NOT NULL,
			license TEXT
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts a new row into the students table and returns
// the auto-generated primary key.
//
// Prepared statements use placeholders (?) so the driver sends query
// and values separately — the engine treats values as pure data, never
// as SQL syntax, which rules out SQL injection.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(name, phone string, grade int, license *string) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO students (name, phone, grade, license) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	// defer ensures the statement is closed when this function returns,
	// even if we return early due to an error. Prevents resource leaks.
	defer stmt.Close()

	// A nil *string binds as SQL NULL, which is exactly what an absent
	// licence should be.
	result, err := stmt.Exec(name, phone, grade, license)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	// LastInsertId returns the auto-generated primary key of the new row.
	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return lastID, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudentByID fetches exactly one student row matched by primary key.
//
// QueryRow returns a *Row; the not-found case only surfaces when Scan
// is called, as sql.ErrNoRows. We translate that sentinel into our own
// storage.ErrStudentNotFound so callers never import database/sql.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudentByID(id int64) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, phone, grade, license FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRow(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Student{}, fmt.Errorf("id %d: %w", id, storage.ErrStudentNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudentByName fetches the first student whose name equals the
// argument ignoring case. Both sides go through LOWER() so the
// comparison is symmetric regardless of how the row was stored.
// Ordering by id makes the "first match" tie-break stable
// (insertion order, since ids only grow).
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudentByName(name string) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, phone, grade, license FROM students WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByName: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRow(name))
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Student{}, fmt.Errorf("name %q: %w", name, storage.ErrStudentNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByName: scan: %w", err)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudents returns all student rows as a slice.
//
// Query (unlike QueryRow) returns *sql.Rows — a cursor over multiple
// rows. Always defer rows.Close() to release the database connection.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudents() ([]types.Student, error) {
	stmt, err := s.Db.Prepare(
		// Explicitly list columns — never use SELECT * in production code.
		// If a column is added later, SELECT * would break Scan's ordering.
		"SELECT id, name, phone, grade, license FROM students",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close() // must close rows to free the DB connection

	// Pre-allocate an empty (non-nil) slice.
	// Returning [] instead of null in JSON is better API behaviour.
	students := make([]types.Student, 0)

	for rows.Next() { // advances cursor; returns false when exhausted
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Phone,
			&student.Grade,
			&student.License,
		); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}

		students = append(students, student)
	}

	// rows.Err() captures any error that occurred during iteration.
	// This is separate from Scan errors.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetRandomStudent returns one row chosen uniformly at random.
//
// SQLite has native random ordering, so the selection happens entirely
// store-side in one statement — no count-then-offset round trip.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetRandomStudent() (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, phone, grade, license FROM students ORDER BY RANDOM() LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetRandomStudent: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRow())
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Student{}, fmt.Errorf("empty store: %w", storage.ErrStudentNotFound)
		}
		return types.Student{}, fmt.Errorf("GetRandomStudent: scan: %w", err)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStudentByID overwrites name, phone, grade, and license of the
// row matching id, then returns the row as stored.
//
// The whole operation runs in one transaction so a concurrent reader
// never observes a partially-applied overwrite, and the existence
// check + update + re-read see a consistent snapshot.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdateStudentByID(id int64, student types.Student) (types.Student, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: begin tx: %w", err)
	}
	// Rollback after a successful Commit is a no-op, so deferring it
	// covers every early-return path below.
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE students SET name = ?, phone = ?, grade = ?, license = ? WHERE id = ?",
		student.Name, student.Phone, student.Grade, student.License, id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Student{}, fmt.Errorf("id %d: %w", id, storage.ErrStudentNotFound)
	}

	// Re-read inside the same transaction so the caller gets exactly
	// what is stored in the DB.
	updated, err := scanStudent(tx.QueryRow(
		"SELECT id, name, phone, grade, license FROM students WHERE id = ? LIMIT 1", id,
	))
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: re-read: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: commit: %w", err)
	}

	return updated, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteStudentByID removes a student row by primary key and reports
// whether a row was actually removed — deleting a missing id is not an
// error, it simply returns false.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) DeleteStudentByID(id int64) (bool, error) {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return false, fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return false, fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}

	return affected > 0, nil
}

// scanStudent reads one row into a Student. The column order must match
// the SELECT lists above: id, name, phone, grade, license.
func scanStudent(row *sql.Row) (types.Student, error) {
	var student types.Student
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Phone,
		&student.Grade,
		&student.License,
	)
	return student, err
}
