package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store", "runs.db")

	first := NewWriterLock(dbPath)
	assert.Equal(t, dbPath+".lock", first.Path())
	require.NoError(t, first.TryLock())

	// A second handle on the same file cannot take it
	second := NewWriterLock(dbPath)
	err := second.TryLock()
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Unlock())
	require.NoError(t, second.TryLock())
	require.NoError(t, second.Unlock())
}

func TestWriterLock_Memory(t *testing.T) {
	lock := NewWriterLock(":memory:")
	assert.Empty(t, lock.Path())
	assert.NoError(t, lock.TryLock())
	assert.NoError(t, lock.TryLock())
	assert.NoError(t, lock.Unlock())
}
