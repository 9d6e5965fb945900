// Package testutil holds fixtures shared by store-backed tests.
package testutil

import (
	"testing"
	"time"
	"upscoverflow/internal/db"
	"upscoverflow/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. A single connection keeps
// every goroutine on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open in-memory sqlite")

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(conn), "failed to migrate schema")
	return conn
}

// Fixtures creates rows with explicit timestamps so ordering assertions are deterministic.
type Fixtures struct {
	t    *testing.T
	db   *gorm.DB
	base time.Time
}

func NewFixtures(t *testing.T, conn *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: conn, base: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// At returns the fixture base time shifted by the given number of minutes.
func (f *Fixtures) At(minutes int) time.Time {
	return f.base.Add(time.Duration(minutes) * time.Minute)
}

func (f *Fixtures) Question(asker, title string, subject models.Subject, minutes int, tags ...string) *models.Question {
	f.t.Helper()
	q := &models.Question{
		Title:       title,
		Description: "<p>" + title + "</p>",
		Subject:     subject,
		AskerID:     asker,
		CreatedAt:   f.At(minutes),
		UpdatedAt:   f.At(minutes),
	}
	for _, tag := range tags {
		q.Tags = append(q.Tags, models.QuestionTag{Name: tag})
	}
	require.NoError(f.t, f.db.Create(q).Error)
	return q
}

func (f *Fixtures) Answer(questionID uint, answerer string, minutes int) *models.Answer {
	f.t.Helper()
	a := &models.Answer{
		QuestionID: questionID,
		AnswererID: answerer,
		Content:    "answer",
		CreatedAt:  f.At(minutes),
		UpdatedAt:  f.At(minutes),
	}
	require.NoError(f.t, f.db.Create(a).Error)
	return a
}

func (f *Fixtures) QuestionComment(questionID uint, commenter string) *models.Comment {
	f.t.Helper()
	c := &models.Comment{QuestionID: &questionID, CommenterID: commenter, Content: "comment"}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f *Fixtures) AnswerComment(answerID uint, commenter string) *models.Comment {
	f.t.Helper()
	c := &models.Comment{AnswerID: &answerID, CommenterID: commenter, Content: "comment"}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f *Fixtures) LikeQuestion(questionID uint, liker string, isLiked bool) *models.Like {
	f.t.Helper()
	l := &models.Like{QuestionID: &questionID, LikerID: liker, IsLiked: isLiked}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}

func (f *Fixtures) LikeAnswer(answerID uint, liker string, isLiked bool) *models.Like {
	f.t.Helper()
	l := &models.Like{AnswerID: &answerID, LikerID: liker, IsLiked: isLiked}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}

func (f *Fixtures) LikeComment(commentID uint, liker string, isLiked bool) *models.Like {
	f.t.Helper()
	l := &models.Like{CommentID: &commentID, LikerID: liker, IsLiked: isLiked}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}

func (f *Fixtures) Save(questionID uint, saver string, minutes int) *models.Save {
	f.t.Helper()
	s := &models.Save{QuestionID: questionID, SaverID: saver, CreatedAt: f.At(minutes)}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

// Count returns the number of rows of model matching the optional where clause.
func (f *Fixtures) Count(model interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(f.t, q.Count(&n).Error)
	return n
}
