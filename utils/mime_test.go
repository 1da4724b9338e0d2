package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSafeExtension(t *testing.T) {
	assert.Equal(t, ".png", GetSafeExtension("image/png"))
	assert.Equal(t, ".jpg", GetSafeExtension("image/jpeg; charset=binary"))
	assert.Equal(t, "", GetSafeExtension("image/svg+xml"))
	assert.Equal(t, "", GetSafeExtension("text/html"))
}

func TestSniffContentType(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	assert.Equal(t, "image/gif", SniffContentType(gif))
	assert.Equal(t, "text/plain", SniffContentType([]byte("hello")))
}
