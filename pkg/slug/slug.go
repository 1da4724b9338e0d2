// Package slug 由任意名称生成 ASCII slug，用作漫画路径和存储目录
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength slug 最大长度，与 comics.slug 列宽一致
const MaxLength = 100

var (
	invalid     = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen = regexp.MustCompile(`-{2,}`)
	valid       = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	// NFD 无法分解的字母
	folds = strings.NewReplacer("æ", "ae", "Æ", "ae", "ø", "o", "Ø", "o", "ß", "ss", "đ", "d", "Đ", "d")
)

// From 生成 slug：去除重音，小写，非字母数字替换为连字符
func From(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, folds.Replace(s))
	if err != nil {
		result = s
	}

	result = strings.ToLower(result)
	result = invalid.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// Valid 判断 s 是否已是规范 slug
func Valid(s string) bool {
	return len(s) <= MaxLength && valid.MatchString(s)
}
