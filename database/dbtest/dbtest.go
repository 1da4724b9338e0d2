// Package dbtest 为仓库和服务测试提供临时 SQLite 数据库与数据构造函数
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm/logger"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
)

// NewProvider 在 t.TempDir() 中创建已迁移的 SQLite 数据库
func NewProvider(t testing.TB) database.Provider {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), logger.Discard)
	require.NoError(t, err)

	provider := database.NewGormProviderFromDB(db, "sqlite")
	require.NoError(t, database.Migrate(provider))
	t.Cleanup(func() { _ = provider.Close() })

	return provider
}

// Date 构造 UTC 零点日期
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateComic 插入一个启用的英文漫画
func CreateComic(t testing.TB, p database.Provider, slug string) *models.Comic {
	t.Helper()

	comic := &models.Comic{
		Name:     slug,
		Slug:     slug,
		Language: models.LanguageEnglish,
		URL:      "https://example.com/" + slug,
		Active:   true,
	}
	require.NoError(t, p.DB().Create(comic).Error)
	return comic
}

// CreateStrip 插入 strip 记录（不写入存储）
func CreateStrip(t testing.TB, p database.Provider, comic *models.Comic, checksum string) *models.Strip {
	t.Helper()

	strip := &models.Strip{
		ComicID:     comic.ID,
		Fetched:     time.Now().UTC(),
		Checksum:    checksum,
		StoragePath: fmt.Sprintf("%s/%c/%s.png", comic.Slug, checksum[0], checksum),
		Storage:     "local",
		MimeType:    "image/png",
		FileSize:    1,
	}
	require.NoError(t, p.DB().Omit("Comic").Create(strip).Error)
	return strip
}

// CreateRelease 插入 release 记录
func CreateRelease(t testing.TB, p database.Provider, comic *models.Comic, strip *models.Strip, pubDate time.Time) *models.Release {
	t.Helper()

	release := &models.Release{
		ComicID: comic.ID,
		PubDate: datatypes.Date(pubDate),
		StripID: strip.ID,
	}
	require.NoError(t, p.DB().Omit("Comic", "Strip").Create(release).Error)
	return release
}
