package errdefs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("put strip: %w", NewStorageError("write", "xkcd/a/abc.png", io.ErrShortWrite))

	assert.True(t, errors.Is(err, ErrStorageFailure))
	assert.True(t, errors.Is(err, io.ErrShortWrite))
	assert.False(t, errors.Is(err, ErrDuplicateRelease))

	var se *StorageError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "write", se.Op)
	assert.Equal(t, "xkcd/a/abc.png", se.Path)
}

func TestIntegrityError_MatchesSentinel(t *testing.T) {
	err := &IntegrityError{Entity: "strip", ID: 7, References: 2}

	assert.True(t, errors.Is(err, ErrReferentialIntegrity))
	assert.Contains(t, err.Error(), "strip 7")
	assert.Contains(t, err.Error(), "2 release")
}

func TestIntegrityError_UnknownReferenceCount(t *testing.T) {
	err := &IntegrityError{Entity: "strip", ID: 7}

	assert.True(t, errors.Is(err, ErrReferentialIntegrity))
	assert.Equal(t, "strip 7 is still referenced", err.Error())
}
