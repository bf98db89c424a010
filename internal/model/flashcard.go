package model

import "time"

type Flashcard struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	Front      string    `gorm:"type:text;not null" json:"front"`
	Back       string    `gorm:"type:text;not null" json:"back"`
	Known      bool      `gorm:"default:false" json:"known"`
	CreatedAt  time.Time `json:"created_at"`
}
