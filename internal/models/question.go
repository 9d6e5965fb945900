package models

import (
	"time"
)

type Question struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"` // sanitized rich text
	Subject     Subject       `gorm:"size:40;not null;index" json:"subject"`
	Tags        []QuestionTag `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AskerID     string        `gorm:"size:64;not null;index" json:"askerId"` // external user id
	CreatedAt   time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TagNames returns the question's tag names in stored order.
func (q *Question) TagNames() []string {
	names := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		names = append(names, t.Name)
	}
	return names
}

// QuestionTag is one tag of a question. Names are stored lower-cased.
type QuestionTag struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;uniqueIndex:idx_question_tag" json:"questionId"`
	Name       string `gorm:"size:64;not null;uniqueIndex:idx_question_tag;index" json:"name"`
}
