package utils

import (
	"log"
	"strings"
	"unicode"

	"github.com/anoixa/comic-tracker/config"
)

// LogIfDev 仅在开发版本输出日志
func LogIfDev(v ...interface{}) {
	if config.IsDevelopment() {
		log.Println(v...)
	}
}

// LogIfDevf 仅在开发版本输出格式化日志
func LogIfDevf(format string, v ...interface{}) {
	if config.IsDevelopment() {
		log.Printf(format, v...)
	}
}

func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == 10 || r == 9 {
			sb.WriteRune(r)
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogSlug 截断并清理用户提交的 slug
func SanitizeLogSlug(slug string) string {
	if len(slug) > 100 {
		slug = slug[:100] + "..."
	}
	return SanitizeLogMessage(slug)
}
