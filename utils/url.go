package utils

import (
	"fmt"
	"strings"
)

// BuildStripURL strip 公共访问地址
func BuildStripURL(baseURL string, stripID uint) string {
	return fmt.Sprintf("%s/strips/%d", strings.TrimRight(baseURL, "/"), stripID)
}
