package model

import "time"

// Document is an uploaded study document. Content holds the full extracted
// text; the vector index over it lives on disk, not in the database.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"size:255;not null" json:"filename"`
	SizeKB    int       `gorm:"default:0" json:"size_kb"`
	Content   string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
