package models

import (
	"time"
)

// Like is an upvote (IsLiked=true) or downvote on exactly one target.
// One row per (liker, target) is enforced by the unique indexes; Postgres and SQLite
// both treat NULLs as distinct so rows for the other target kinds never collide.
type Like struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LikerID    string    `gorm:"size:64;not null;uniqueIndex:idx_like_question;uniqueIndex:idx_like_answer;uniqueIndex:idx_like_comment" json:"likerId"`
	IsLiked    bool      `gorm:"not null" json:"isLiked"`
	QuestionID *uint     `gorm:"uniqueIndex:idx_like_question;index" json:"questionId,omitempty"`
	AnswerID   *uint     `gorm:"uniqueIndex:idx_like_answer;index" json:"answerId,omitempty"`
	CommentID  *uint     `gorm:"uniqueIndex:idx_like_comment;index" json:"commentId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
