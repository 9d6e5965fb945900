package models

import (
	"time"
)

// Save is a user's bookmark on a question.
type Save struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SaverID    string    `gorm:"size:64;not null;index;uniqueIndex:idx_saver_question" json:"saverId"`
	QuestionID uint      `gorm:"not null;index;uniqueIndex:idx_saver_question" json:"questionId"`
	CreatedAt  time.Time `json:"createdAt"`
}
