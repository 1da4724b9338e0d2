package generator

import (
	"fmt"
	"path"
	"strings"
)

// StripPath 生成 strip 存储路径 <slug>/<name[0]>/<name>
// name 为校验和加扩展名，首字符分片以控制单目录文件数
func StripPath(slug, checksum, ext string) string {
	name := checksum + ext
	return fmt.Sprintf("%s/%s/%s", slug, name[:1], name)
}

// ParseStripPath 从存储路径还原 slug 与校验和
func ParseStripPath(storagePath string) (slug, checksum string, ok bool) {
	parts := strings.Split(storagePath, "/")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", "", false
	}
	name := parts[2]
	if parts[1] != name[:1] {
		return "", "", false
	}
	checksum = strings.TrimSuffix(name, path.Ext(name))
	return parts[0], checksum, true
}
