package models

import (
	"time"
)

// Comment belongs to exactly one of a question or an answer.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuestionID  *uint     `gorm:"index" json:"questionId,omitempty"`
	AnswerID    *uint     `gorm:"index" json:"answerId,omitempty"`
	CommenterID string    `gorm:"size:64;not null;index" json:"commenterId"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
