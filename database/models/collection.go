package models

import "time"

// Collection 漫画合集
type Collection struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_collection_name" json:"name"`
	Description string    `gorm:"type:varchar(255)" json:"description"`

	Comics []*Comic `gorm:"many2many:collection_comics;constraint:OnDelete:CASCADE" json:"comics,omitempty"`
}
