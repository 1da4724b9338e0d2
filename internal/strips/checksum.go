package strips

import (
	_ "crypto/sha256"

	"github.com/opencontainers/go-digest"
)

// Checksum 返回内容的 sha256 十六进制摘要，作为去重键和文件名
func Checksum(data []byte) string {
	return digest.FromBytes(data).Encoded()
}

// ValidChecksum 校验摘要格式
func ValidChecksum(checksum string) bool {
	return digest.NewDigestFromEncoded(digest.SHA256, checksum).Validate() == nil
}
