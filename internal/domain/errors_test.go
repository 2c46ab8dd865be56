package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageError_MatchesKindAndCause(t *testing.T) {
	err := Internal("docs", "readme.txt", "copy failed", fs.ErrPermission)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.NotErrorIs(t, err, ErrNotFound)

	var se *StorageError
	if assert.True(t, errors.As(err, &se)) {
		assert.Equal(t, "docs", se.Bucket)
		assert.Equal(t, "readme.txt", se.Asset)
	}
	assert.Contains(t, err.Error(), `bucket="docs"`)
	assert.Contains(t, err.Error(), "copy failed")
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", NotFound("b", ""), ErrNotFound},
		{"already exists", AlreadyExists("b", "a"), ErrAlreadyExists},
		{"internal", Internal("b", "", "", nil), ErrInternal},
		{"invalid", InvalidIdentifier("..", "", nil), ErrInvalidIdentifier},
		{"escalated", Internal("b", "a", "", AlreadyExists("b", "a")), ErrInternal},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("b", "")), ErrNotFound},
		{"plain", errors.New("boom"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestIsSafeSegment(t *testing.T) {
	valid := []string{"docs", "readme.txt", "with space", "ünïcode", "a..b", ".hidden", "%2F"}
	for _, id := range valid {
		assert.True(t, IsSafeSegment(id), "expected %q to be accepted", id)
	}

	invalid := []string{"", ".", "..", "a/b", "../etc", `a\b`, "nul\x00", StagingPrefix + "x.tmp"}
	for _, id := range invalid {
		assert.False(t, IsSafeSegment(id), "expected %q to be rejected", id)
	}
}

func TestValidateAssetID(t *testing.T) {
	assert.NoError(t, ValidateAssetID("docs", "readme.txt"))

	err := ValidateAssetID("..", "readme.txt")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	err = ValidateAssetID("docs", "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	var se *StorageError
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, "../../etc/passwd", se.Asset)
	}
}
