package repositories

import (
	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/repo/collections"
	"github.com/anoixa/comic-tracker/database/repo/comics"
	"github.com/anoixa/comic-tracker/database/repo/releases"
	"github.com/anoixa/comic-tracker/database/repo/stats"
	"github.com/anoixa/comic-tracker/database/repo/strips"
)

// Repositories 集中管理所有数据库仓库
type Repositories struct {
	Comics      *comics.Repository
	Strips      *strips.Repository
	Releases    *releases.Repository
	Collections *collections.Repository
	Stats       *stats.Repository
}

// NewRepositories 创建所有仓库实例
func NewRepositories(provider database.Provider) *Repositories {
	return &Repositories{
		Comics:      comics.NewRepository(provider),
		Strips:      strips.NewRepository(provider),
		Releases:    releases.NewRepository(provider),
		Collections: collections.NewRepository(provider),
		Stats:       stats.NewRepository(provider),
	}
}
