package models

import "time"

// PreviewPhotoLimit caps how many photos the album listing populates per album.
const PreviewPhotoLimit = 4

// Album is a named collection of photos owned by one user.
type Album struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Photos    []Photo   `gorm:"foreignKey:AlbumID" json:"photos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Album) TableName() string {
	return "albums"
}
