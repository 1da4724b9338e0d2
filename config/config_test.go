package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_FileModes(t *testing.T) {
	cfg := &Config{StorageFileMode: "0640", StorageDirMode: "750"}
	assert.Equal(t, os.FileMode(0640), cfg.FileMode())
	assert.Equal(t, os.FileMode(0750), cfg.DirMode())

	// 非法值回退到默认
	cfg = &Config{StorageFileMode: "rw-r--r--", StorageDirMode: "17777"}
	assert.Equal(t, os.FileMode(0664), cfg.FileMode())
	assert.Equal(t, os.FileMode(0775), cfg.DirMode())
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())

	cfg = &Config{ServerHost: "127.0.0.1", ServerPort: 9000}
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "http://127.0.0.1:9000", cfg.BaseURL())

	cfg.ServerDomain = "https://comics.example.org"
	assert.Equal(t, "https://comics.example.org", cfg.BaseURL())
}

func TestConfig_Location(t *testing.T) {
	assert.Equal(t, time.Local, (&Config{}).Location())
	assert.Equal(t, time.UTC, (&Config{ReportTimeZone: "UTC"}).Location())
	assert.Equal(t, time.Local, (&Config{ReportTimeZone: "Mars/Olympus"}).Location())
}
