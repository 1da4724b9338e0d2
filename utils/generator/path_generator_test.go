package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const checksum = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func TestStripPath(t *testing.T) {
	p := StripPath("xkcd", checksum, ".png")
	assert.Equal(t, "xkcd/9/"+checksum+".png", p)
}

func TestParseStripPath(t *testing.T) {
	slug, sum, ok := ParseStripPath(StripPath("lunch", checksum, ".jpg"))
	assert.True(t, ok)
	assert.Equal(t, "lunch", slug)
	assert.Equal(t, checksum, sum)

	for _, bad := range []string{"", "xkcd", "xkcd/a/" + checksum + ".png", "a/b/c/d", "/9/" + checksum} {
		_, _, ok := ParseStripPath(bad)
		assert.False(t, ok, bad)
	}
}
