package types

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   PlanEntry
		wantErr error
	}{
		{"valid", PlanEntry{Path: "a.txt", ByteSize: 10, ChunkCount: 1}, nil},
		{"zero-byte file", PlanEntry{Path: "a.txt", ChunkCount: 1}, nil},
		{"empty path", PlanEntry{ChunkCount: 1}, ErrEmptyPath},
		{"zero chunks", PlanEntry{Path: "a.txt", ChunkCount: 0}, ErrInvalidChunkCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlan_Totals(t *testing.T) {
	plan := Plan{
		{Path: "a.txt", ByteSize: 500_000, ChunkCount: 1},
		{Path: "b.txt", ByteSize: 3_000_000, ChunkCount: 2},
	}
	assert.Equal(t, 3, plan.TotalChunks())
	assert.Equal(t, int64(3_500_000), plan.TotalBytes())
	assert.NoError(t, plan.Validate())

	var empty Plan
	assert.Equal(t, 0, empty.TotalChunks())
	assert.Equal(t, int64(0), empty.TotalBytes())
}

func TestPlan_ValidateDuplicate(t *testing.T) {
	plan := Plan{
		{Path: "a.txt", ChunkCount: 1},
		{Path: "a.txt", ChunkCount: 2},
	}
	assert.ErrorIs(t, plan.Validate(), ErrDuplicatePath)
}

func TestFileReadError(t *testing.T) {
	err := error(&FileReadError{Path: "texts/english/a.txt", Err: fs.ErrPermission})

	assert.Equal(t, "failed to read texts/english/a.txt: permission denied", err.Error())
	assert.True(t, errors.Is(err, fs.ErrPermission))

	var readErr *FileReadError
	assert.True(t, errors.As(err, &readErr))
	assert.Equal(t, "texts/english/a.txt", readErr.Path)
}
