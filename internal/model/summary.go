package model

import "time"

type Summary struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	Title      string    `gorm:"size:255" json:"title"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	WordCount  int       `gorm:"default:0" json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
}
