package services

import (
	"time"
	"upscoverflow/internal/identity"
	"upscoverflow/internal/models"
)

// QuestionListItem is one row of the question listings.
type QuestionListItem struct {
	ID      uint             `json:"id"`
	Title   string           `json:"title"`
	Excerpt string           `json:"excerpt"`
	Subject models.Subject   `json:"subject"`
	Tags    []string         `json:"tags"`
	AskerID string           `json:"-"`
	Asker   identity.Profile `json:"asker"`
	Engagement
	AnswersCount  int64      `json:"answersCount"`
	CommentsCount int64      `json:"commentsCount"`
	IsSaved       bool       `json:"isSaved"`
	SavedAt       *time.Time `json:"savedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (q QuestionListItem) rankable() rankable {
	r := rankable{
		id:        q.ID,
		createdAt: q.CreatedAt,
		votes:     q.Score(),
		answers:   q.AnswersCount,
		comments:  q.CommentsCount,
		tags:      len(q.Tags),
	}
	if q.SavedAt != nil {
		r.savedAt = *q.SavedAt
	}
	return r
}

// QuestionDetail adds the full description to a listing row.
type QuestionDetail struct {
	QuestionListItem
	Description string `json:"description"`
}

type AnswerItem struct {
	ID         uint             `json:"id"`
	QuestionID uint             `json:"questionId"`
	Content    string           `json:"content"`
	AnswererID string           `json:"-"`
	Answerer   identity.Profile `json:"answerer"`
	Engagement
	CommentsCount int64     `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (a AnswerItem) rankable() rankable {
	return rankable{
		id:        a.ID,
		createdAt: a.CreatedAt,
		votes:     a.Score(),
		comments:  a.CommentsCount,
	}
}

type CommentItem struct {
	ID          uint             `json:"id"`
	QuestionID  *uint            `json:"questionId,omitempty"`
	AnswerID    *uint            `json:"answerId,omitempty"`
	Content     string           `json:"content"`
	CommenterID string           `json:"-"`
	Commenter   identity.Profile `json:"commenter"`
	Engagement
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SubjectItem struct {
	Subject models.Subject `json:"subject"`
	GroupCounts
}

type TagItem struct {
	Name string `json:"name"`
	GroupCounts
}

type UserItem struct {
	UserID string           `json:"userId"`
	User   identity.Profile `json:"user"`
	GroupCounts
}
