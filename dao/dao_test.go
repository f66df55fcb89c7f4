package dao

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/mapdao/dao/store"
)

// TestDAO_BackupRestore round-trips a DAO through its configured snapshot.
func TestDAO_BackupRestore(t *testing.T) {
	t.Parallel()

	opts := Options{
		ShardCount: 4,
		Snapshot: &SnapshotOptions{
			Path:     filepath.Join(t.TempDir(), "users.snapshot"),
			MaxBytes: "1MiB",
		},
	}

	users, err := Open(newTestRegistry(nil), "users", userKey, opts)
	require.NoError(t, err)

	users.Put(user{ID: "u1", Email: "one@example.com", Age: 31})
	users.Put(user{ID: "u2", Email: "two@example.com", Age: 17})
	users.Put(user{ID: "u3", Email: "three@example.com", Age: 45})

	adults := func(u user) bool { return u.Age >= 18 }

	backup, err := users.Backup(t.Context(), store.Query[user]{Where: adults})
	require.NoError(t, err)
	assert.EqualValues(t, 2, backup.TotalEntries)

	users.RemoveAll(store.Query[user]{})
	require.Equal(t, 0, users.Size())

	restored, err := users.Restore()
	require.NoError(t, err)
	assert.EqualValues(t, 2, restored.TotalEntries)

	got, ok := users.Find("u3")
	require.True(t, ok)
	assert.Equal(t, user{ID: "u3", Email: "three@example.com", Age: 45}, got)

	_, ok = users.Find("u2")
	assert.False(t, ok)
}

// TestDAO_SnapshotErrors validates:
//  1. snapshot operations without configuration fail with SnapshotDisabledError;
//  2. a missing snapshot fails with SnapshotNotFoundError;
//  3. an exceeded budget fails with SnapshotBudgetExceededError.
func TestDAO_SnapshotErrors(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(nil)

	plain, err := Open(registry, "plain", userKey, Options{})
	require.NoError(t, err)

	_, err = plain.Backup(t.Context(), store.Query[user]{})
	requireErrorName(t, err, SnapshotDisabledError)

	_, err = plain.Restore()
	requireErrorName(t, err, SnapshotDisabledError)

	dir := t.TempDir()

	missing, err := Open(registry, "missing", userKey, Options{
		Snapshot: &SnapshotOptions{Path: filepath.Join(dir, "nope.snapshot")},
	})
	require.NoError(t, err)

	_, err = missing.Restore()
	requireErrorName(t, err, SnapshotNotFoundError)

	path := filepath.Join(dir, "tight.snapshot")

	tight, err := Open(registry, "tight", userKey, Options{
		Snapshot: &SnapshotOptions{Path: path, MaxEntries: 1},
	})
	require.NoError(t, err)

	tight.Put(user{ID: "a"})
	tight.Put(user{ID: "b"})

	_, err = tight.Backup(t.Context(), store.Query[user]{})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = tight.Restore()
	requireErrorName(t, err, SnapshotBudgetExceededError)
	require.ErrorIs(t, err, store.ErrRestoreBudgetEntriesExceeded)
	assert.Equal(t, 2, tight.Size(), "a rejected restore leaves the DAO untouched")
}

// requireErrorName asserts that err is a classified *Error with the given name.
func requireErrorName(t *testing.T, err error, name ErrorName) {
	t.Helper()

	var daoErr *Error

	require.ErrorAs(t, err, &daoErr)
	assert.Equal(t, name, daoErr.Name)
}
