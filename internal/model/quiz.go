package model

import "time"

type Quiz struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	DocumentID     uint       `gorm:"not null;index" json:"document_id"`
	Title          string     `gorm:"size:255" json:"title"`
	TotalQuestions int        `gorm:"default:0" json:"total_questions"`
	Backend        string     `gorm:"size:64" json:"backend"`
	CreatedAt      time.Time  `json:"created_at"`
	Questions      []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// Question is one generated quiz item in its canonical form.
// Options uses the "A) ...|B) ..." pipe encoding for mcq/tf and is empty
// for short/fill.
type Question struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	QuizID        uint   `gorm:"not null;index" json:"quiz_id"`
	Kind          string `gorm:"size:32" json:"kind"`
	Difficulty    string `gorm:"size:16" json:"difficulty"`
	Prompt        string `gorm:"type:text;not null" json:"prompt"`
	Options       string `gorm:"type:text" json:"options,omitempty"`
	CorrectAnswer string `gorm:"type:text" json:"-"`
	Explanation   string `gorm:"type:text" json:"explanation,omitempty"`
}
