package models

import (
	"time"

	"gorm.io/datatypes"
)

// 支持的漫画语言
const (
	LanguageEnglish   = "en"
	LanguageNorwegian = "no"
)

// Comic 漫画登记信息
type Comic struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string          `gorm:"type:varchar(100);not null;index" json:"name"`
	Slug      string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_comic_slug" json:"slug"`
	Language  string          `gorm:"type:varchar(2);not null" json:"language"`
	URL       string          `gorm:"type:varchar(255)" json:"url"`
	StartDate *datatypes.Date `gorm:"type:date" json:"start_date,omitempty"`
	EndDate   *datatypes.Date `gorm:"type:date" json:"end_date,omitempty"`
	Rights    string          `gorm:"type:varchar(100)" json:"rights"`
	Active    bool            `gorm:"not null;index" json:"active"`

	// NumberOfSets 冗余计数，随 collection_comics 变更在同一事务内重算
	NumberOfSets int `gorm:"not null;default:0" json:"number_of_sets"`
}

// IsValidLanguage 检查语言标记
func IsValidLanguage(lang string) bool {
	return lang == LanguageEnglish || lang == LanguageNorwegian
}
