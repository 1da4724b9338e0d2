package models

import "time"

// Strip 内容寻址的漫画图片，(comic_id, checksum) 唯一
type Strip struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ComicID uint  `gorm:"not null;uniqueIndex:idx_strip_comic_checksum,priority:1" json:"comic_id"`
	Comic   Comic `gorm:"constraint:OnDelete:RESTRICT" json:"-"`

	Fetched     time.Time `gorm:"not null" json:"fetched"`
	Checksum    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_strip_comic_checksum,priority:2;index" json:"checksum"`
	StoragePath string    `gorm:"type:varchar(255);not null" json:"storage_path"`
	Storage     string    `gorm:"type:varchar(32);not null" json:"storage"`
	MimeType    string    `gorm:"type:varchar(64);not null" json:"mime_type"`
	FileSize    int64     `gorm:"not null" json:"file_size"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Title       string    `gorm:"type:varchar(255)" json:"title,omitempty"`
	Text        string    `gorm:"type:text" json:"text,omitempty"`
}
