package validator

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anoixa/comic-tracker/utils"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageInfo 图片基础信息
type ImageInfo struct {
	MimeType  string
	Extension string
	Width     int
	Height    int
}

// InspectImage 校验内容为允许的图片类型并读取像素尺寸
func InspectImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	mimeType := utils.SniffContentType(data)
	ext := utils.GetSafeExtension(mimeType)
	if ext == "" {
		return nil, fmt.Errorf("unsupported content type %s", mimeType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s header: %w", mimeType, err)
	}

	return &ImageInfo{
		MimeType:  mimeType,
		Extension: ext,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}
