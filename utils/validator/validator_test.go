package validator

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspectImage_PNG(t *testing.T) {
	info, err := InspectImage(encodePNG(t, 40, 12))
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.MimeType)
	assert.Equal(t, ".png", info.Extension)
	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 12, info.Height)
}

func TestInspectImage_Rejects(t *testing.T) {
	_, err := InspectImage(nil)
	assert.Error(t, err)

	_, err = InspectImage([]byte("<html><body>not a comic</body></html>"))
	assert.Error(t, err)

	// 合法魔数但内容截断
	_, err = InspectImage([]byte("\x89PNG\r\n\x1a\n"))
	assert.Error(t, err)
}
