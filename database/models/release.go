package models

import (
	"time"

	"gorm.io/datatypes"
)

// Release 记录某漫画在某日发布了某张 Strip
// idx_release_comic_date_strip 同时承担唯一约束和报表查询的排序索引
type Release struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ComicID uint           `gorm:"not null;uniqueIndex:idx_release_comic_date_strip,priority:1" json:"comic_id"`
	Comic   Comic          `gorm:"constraint:OnDelete:RESTRICT" json:"comic"`
	PubDate datatypes.Date `gorm:"type:date;not null;uniqueIndex:idx_release_comic_date_strip,priority:2;index" json:"pub_date"`
	StripID uint           `gorm:"not null;uniqueIndex:idx_release_comic_date_strip,priority:3;index" json:"strip_id"`
	Strip   Strip          `gorm:"constraint:OnDelete:RESTRICT" json:"strip"`
}

// Date 返回发布日期（UTC 零点）
func (r *Release) Date() time.Time {
	return time.Time(r.PubDate)
}
