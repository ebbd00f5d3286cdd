package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklin-edu/students-api/internal/config"
	"github.com/franklin-edu/students-api/internal/storage"
	"github.com/franklin-edu/students-api/internal/storage/sqlite"
	"github.com/franklin-edu/students-api/internal/types"
)

// newTestStore opens a fresh SQLite database in a per-test temp dir.
// A file-backed DB (not :memory:) because database/sql pools
// connections and each new connection to :memory: would see its own
// empty database.
func newTestStore(t *testing.T) *sqlite.SQLite {
	t.Helper()

	store, err := sqlite.New(&config.Config{
		StoragePath: filepath.Join(t.TempDir(), "students.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Db.Close() })

	return store
}

func strptr(s string) *string { return &s }

func TestCreateAndGetByID(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateStudent("Ada Lovelace", "555-0100", 9, nil)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := store.GetStudentByID(id)
	require.NoError(t, err)

	require.NotNil(t, got.ID)
	assert.Equal(t, id, *got.ID)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, 9, got.Grade)
	assert.Nil(t, got.License)
}

func TestCreateStoresLicense(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateStudent("Grace Hopper", "555-0101", 12, strptr("B"))
	require.NoError(t, err)

	got, err := store.GetStudentByID(id)
	require.NoError(t, err)
	require.NotNil(t, got.License)
	assert.Equal(t, "B", *got.License)
}

func TestGetByIDNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetStudentByID(9999)
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestGetByNameIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateStudent("Ada", "555-0100", 9, nil)
	require.NoError(t, err)

	for _, name := range []string{"Ada", "ada", "ADA", "aDa"} {
		got, err := store.GetStudentByName(name)
		require.NoError(t, err, "lookup %q", name)
		assert.Equal(t, id, *got.ID)
	}

	_, err = store.GetStudentByName("Zoe")
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestGetByNameTieBreaksOnLowestID(t *testing.T) {
	store := newTestStore(t)

	first, err := store.CreateStudent("Ada", "555-0100", 9, nil)
	require.NoError(t, err)
	_, err = store.CreateStudent("ADA", "555-0200", 10, nil)
	require.NoError(t, err)

	got, err := store.GetStudentByName("ada")
	require.NoError(t, err)
	assert.Equal(t, first, *got.ID)
}

func TestGetStudentsEmptyIsNotNil(t *testing.T) {
	store := newTestStore(t)

	students, err := store.GetStudents()
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestGetStudentsReturnsAll(t *testing.T) {
	store := newTestStore(t)

	names := []string{"Ada", "Grace", "Katherine"}
	for _, name := range names {
		_, err := store.CreateStudent(name, "555-0100", 9, nil)
		require.NoError(t, err)
	}

	students, err := store.GetStudents()
	require.NoError(t, err)
	require.Len(t, students, len(names))

	got := make([]string, 0, len(students))
	for _, s := range students {
		got = append(got, s.Name)
	}
	assert.ElementsMatch(t, names, got)
}

func TestGetRandomStudent(t *testing.T) {
	store := newTestStore(t)

	// Empty store is a not-found, not an error.
	_, err := store.GetRandomStudent()
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)

	// With exactly one record it must return that record every time.
	id, err := store.CreateStudent("Ada", "555-0100", 9, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		got, err := store.GetRandomStudent()
		require.NoError(t, err)
		assert.Equal(t, id, *got.ID)
	}
}

func TestGetRandomStudentReturnsAMember(t *testing.T) {
	store := newTestStore(t)

	ids := make(map[int64]bool)
	for _, name := range []string{"Ada", "Grace", "Katherine"} {
		id, err := store.CreateStudent(name, "555-0100", 9, nil)
		require.NoError(t, err)
		ids[id] = true
	}

	for i := 0; i < 10; i++ {
		got, err := store.GetRandomStudent()
		require.NoError(t, err)
		assert.True(t, ids[*got.ID], "random pick must be a stored record")
	}
}

func TestUpdateStudentByID(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateStudent("Ada", "555-0100", 9, nil)
	require.NoError(t, err)

	updated, err := store.UpdateStudentByID(id, types.Student{
		Name:    "Ada Lovelace",
		Phone:   "555-0199",
		Grade:   10,
		License: strptr("B"),
	})
	require.NoError(t, err)

	// The returned record is what the store now holds.
	assert.Equal(t, id, *updated.ID)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, 10, updated.Grade)
	require.NotNil(t, updated.License)
	assert.Equal(t, "B", *updated.License)

	refetched, err := store.GetStudentByID(id)
	require.NoError(t, err)
	assert.Equal(t, updated, refetched)
}

func TestUpdateOverwritesLicenseWithNull(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateStudent("Ada", "555-0100", 9, strptr("B"))
	require.NoError(t, err)

	// Full overwrite: a nil license in the new values clears the
	// stored one, it is not a partial merge.
	updated, err := store.UpdateStudentByID(id, types.Student{
		Name:  "Ada",
		Phone: "555-0100",
		Grade: 9,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.License)
}

func TestUpdateNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateStudentByID(9999, types.Student{
		Name:  "Nobody",
		Phone: "555-0100",
		Grade: 9,
	})
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestDeleteStudentByID(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateStudent("Ada", "555-0100", 9, nil)
	require.NoError(t, err)

	deleted, err := store.DeleteStudentByID(id)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.GetStudentByID(id)
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)

	// A second delete of the same id removes nothing.
	deleted, err = store.DeleteStudentByID(id)
	require.NoError(t, err)
	assert.False(t, deleted)
}
