package models

import "time"

// Photo references one stored image inside an album.
type Photo struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	URL        string    `gorm:"not null" json:"url"`
	StorageKey string    `gorm:"size:255" json:"-"`
	AlbumID    uint      `gorm:"not null;index" json:"album_id"`
	Album      *Album    `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Photo) TableName() string {
	return "photos"
}
