package services

import (
	"context"
	"errors"
	"testing"
	"upscoverflow/internal/apperror"
	"upscoverflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToggleLikeUpdatesInPlace(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")
	target := TargetInput{QuestionID: &q.ID}

	e, err := h.mutations.ToggleLike(ctx, "bob", target, true)
	require.NoError(t, err)
	assert.Equal(t, Engagement{Likes: 1, VoteScore: 1, IsLiked: true}, e)

	e, err = h.mutations.ToggleLike(ctx, "bob", target, false)
	require.NoError(t, err)
	assert.Equal(t, Engagement{Dislikes: 1, VoteScore: -1, IsDisliked: true}, e)

	assert.Equal(t, int64(1), h.fx.Count(&models.Like{}, "liker_id = ? AND question_id = ?", "bob", q.ID))

	// repeating the same vote keeps a single row
	_, err = h.mutations.ToggleLike(ctx, "bob", target, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.fx.Count(&models.Like{}, ""))
}

func TestToggleLikeTargets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")
	a := h.fx.Answer(q.ID, "bob", 1)
	c := h.fx.AnswerComment(a.ID, "carol")

	_, err := h.mutations.ToggleLike(ctx, "dave", TargetInput{AnswerID: &a.ID}, true)
	require.NoError(t, err)
	_, err = h.mutations.ToggleLike(ctx, "dave", TargetInput{CommentID: &c.ID}, true)
	require.NoError(t, err)
	_, err = h.mutations.ToggleLike(ctx, "dave", TargetInput{QuestionID: &q.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), h.fx.Count(&models.Like{}, "liker_id = ?", "dave"))

	_, err = h.mutations.ToggleLike(ctx, "dave", TargetInput{AnswerID: uintPtr(404)}, true)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = h.mutations.ToggleLike(ctx, "dave", TargetInput{}, true)
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	_, err = h.mutations.ToggleLike(ctx, "", TargetInput{QuestionID: &q.ID}, true)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
}

func TestDeleteLike(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")
	h.fx.LikeQuestion(q.ID, "bob", true)
	h.fx.LikeQuestion(q.ID, "carol", true)

	e, err := h.mutations.DeleteLike(ctx, "bob", TargetInput{QuestionID: &q.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.Likes)
	assert.False(t, e.IsLiked)

	_, err = h.mutations.DeleteLike(ctx, "bob", TargetInput{QuestionID: &q.ID})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindBadRequest, appErr.Kind)
	assert.Equal(t, "Like not found", appErr.Message)
}

func TestDeleteQuestionCascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q := h.fx.Question("alice", "Doomed", models.SubjectPolity, 0, "x", "y")
	a1 := h.fx.Answer(q.ID, "bob", 1)
	a2 := h.fx.Answer(q.ID, "carol", 2)
	qc := h.fx.QuestionComment(q.ID, "dave")
	ac := h.fx.AnswerComment(a1.ID, "erin")
	h.fx.AnswerComment(a2.ID, "erin")
	h.fx.LikeQuestion(q.ID, "bob", true)
	h.fx.LikeAnswer(a1.ID, "carol", false)
	h.fx.LikeComment(qc.ID, "bob", true)
	h.fx.LikeComment(ac.ID, "alice", true)
	h.fx.Save(q.ID, "bob", 3)

	survivor := h.fx.Question("bob", "Survivor", models.SubjectPolity, 5, "x")
	sa := h.fx.Answer(survivor.ID, "alice", 6)
	h.fx.AnswerComment(sa.ID, "alice")
	h.fx.LikeQuestion(survivor.ID, "alice", true)
	h.fx.Save(survivor.ID, "alice", 7)

	err := h.mutations.DeleteQuestion(ctx, "bob", q.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	assert.Equal(t, int64(2), h.fx.Count(&models.Question{}, ""))

	require.NoError(t, h.mutations.DeleteQuestion(ctx, "alice", q.ID))

	assert.Equal(t, int64(0), h.fx.Count(&models.Question{}, "id = ?", q.ID))
	assert.Equal(t, int64(0), h.fx.Count(&models.Answer{}, "question_id = ?", q.ID))
	assert.Equal(t, int64(0), h.fx.Count(&models.Comment{}, "question_id = ? OR answer_id IN ?", q.ID, []uint{a1.ID, a2.ID}))
	assert.Equal(t, int64(0), h.fx.Count(&models.QuestionTag{}, "question_id = ?", q.ID))
	assert.Equal(t, int64(0), h.fx.Count(&models.Save{}, "question_id = ?", q.ID))

	// only the survivor's rows remain
	assert.Equal(t, int64(1), h.fx.Count(&models.Answer{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.Comment{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.Like{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.Save{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.QuestionTag{}, ""))

	err = h.mutations.DeleteQuestion(ctx, "alice", q.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDeleteAnswerCascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")
	a := h.fx.Answer(q.ID, "bob", 1)
	c := h.fx.AnswerComment(a.ID, "carol")
	h.fx.LikeAnswer(a.ID, "alice", true)
	h.fx.LikeComment(c.ID, "alice", true)
	h.fx.LikeQuestion(q.ID, "bob", true)

	assert.True(t, apperror.IsKind(h.mutations.DeleteAnswer(ctx, "alice", a.ID), apperror.KindForbidden))
	require.NoError(t, h.mutations.DeleteAnswer(ctx, "bob", a.ID))

	assert.Equal(t, int64(0), h.fx.Count(&models.Answer{}, ""))
	assert.Equal(t, int64(0), h.fx.Count(&models.Comment{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.Like{}, "question_id = ?", q.ID))
	assert.Equal(t, int64(1), h.fx.Count(&models.Like{}, ""))
}

func TestDeleteComment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")
	c := h.fx.QuestionComment(q.ID, "bob")
	h.fx.LikeComment(c.ID, "alice", false)

	assert.True(t, apperror.IsKind(h.mutations.DeleteComment(ctx, "alice", c.ID), apperror.KindForbidden))
	assert.True(t, apperror.IsKind(h.mutations.DeleteComment(ctx, "bob", c.ID+1), apperror.KindNotFound))
	assert.True(t, apperror.IsKind(h.mutations.DeleteComment(ctx, "", c.ID), apperror.KindUnauthorized))

	require.NoError(t, h.mutations.DeleteComment(ctx, "bob", c.ID))
	assert.Equal(t, int64(0), h.fx.Count(&models.Comment{}, ""))
	assert.Equal(t, int64(0), h.fx.Count(&models.Like{}, ""))
}

func TestCreateQuestion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	q, err := h.mutations.CreateQuestion(ctx, "alice", QuestionInput{
		Title:       "  Role of the Governor  ",
		Description: `<p>Discuss<script>alert(1)</script></p>`,
		Subject:     "polity",
		Tags:        []string{"GS2", "gs2", " Constitution "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Role of the Governor", q.Title)
	assert.Equal(t, "<p>Discuss</p>", q.Description)
	assert.Equal(t, []string{"gs2", "constitution"}, q.TagNames())
	assert.Equal(t, int64(2), h.fx.Count(&models.QuestionTag{}, "question_id = ?", q.ID))

	md, err := h.mutations.CreateQuestion(ctx, "alice", QuestionInput{
		Title: "Markdown", Description: "**bold**", Subject: "essay", Tags: []string{"x"}, Format: "markdown",
	})
	require.NoError(t, err)
	assert.Contains(t, md.Description, "<strong>bold</strong>")

	_, err = h.mutations.CreateQuestion(ctx, "alice", QuestionInput{Subject: "astrology"})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindBadRequest, appErr.Kind)
	assert.Len(t, appErr.Errors, 4)
}

func TestUpdateQuestion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Old", models.SubjectPolity, 0, "a", "b")

	in := QuestionInput{Title: "New", Description: "<p>body</p>", Subject: "economy", Tags: []string{"c"}}
	_, err := h.mutations.UpdateQuestion(ctx, "bob", q.ID, in)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	updated, err := h.mutations.UpdateQuestion(ctx, "alice", q.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, models.SubjectEconomy, updated.Subject)

	var tags []models.QuestionTag
	require.NoError(t, h.db.Where("question_id = ?", q.ID).Find(&tags).Error)
	require.Len(t, tags, 1)
	assert.Equal(t, "c", tags[0].Name)
}

func TestCreateAnswerAndComment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")

	a, err := h.mutations.CreateAnswer(ctx, "bob", AnswerInput{QuestionID: q.ID, Content: "<p>Answer</p>"})
	require.NoError(t, err)
	assert.Equal(t, "bob", a.AnswererID)

	_, err = h.mutations.CreateAnswer(ctx, "bob", AnswerInput{QuestionID: q.ID + 10, Content: "x"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = h.mutations.CreateAnswer(ctx, "bob", AnswerInput{QuestionID: q.ID, Content: "<p> </p>"})
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	c, err := h.mutations.CreateComment(ctx, "carol", CommentInput{AnswerID: &a.ID, Content: "nice"})
	require.NoError(t, err)
	assert.Nil(t, c.QuestionID)

	_, err = h.mutations.CreateComment(ctx, "carol", CommentInput{QuestionID: &q.ID, AnswerID: &a.ID, Content: "both"})
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	_, err = h.mutations.CreateComment(ctx, "carol", CommentInput{QuestionID: &q.ID, Content: "  "})
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestToggleSave(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")

	saved, err := h.mutations.ToggleSave(ctx, "bob", q.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, int64(1), h.fx.Count(&models.Save{}, ""))

	saved, err = h.mutations.ToggleSave(ctx, "bob", q.ID)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, int64(0), h.fx.Count(&models.Save{}, ""))

	_, err = h.mutations.ToggleSave(ctx, "bob", q.ID+1)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

// failDeletesOn makes every DELETE against table fail inside conn.
func failDeletesOn(t *testing.T, conn *gorm.DB, table string) {
	t.Helper()
	err := conn.Callback().Delete().Before("gorm:delete").Register("test:fail_delete_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)
}

func TestDeleteQuestionRollsBackOnFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")
	a := h.fx.Answer(q.ID, "bob", 1)
	c := h.fx.AnswerComment(a.ID, "carol")
	h.fx.LikeQuestion(q.ID, "bob", true)
	h.fx.LikeComment(c.ID, "alice", true)
	h.fx.Save(q.ID, "bob", 2)

	// the question row is deleted last, after every dependent table
	failDeletesOn(t, h.db, "questions")

	err := h.mutations.DeleteQuestion(ctx, "alice", q.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))

	assert.Equal(t, int64(1), h.fx.Count(&models.Question{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.Answer{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.Comment{}, ""))
	assert.Equal(t, int64(2), h.fx.Count(&models.Like{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.Save{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.QuestionTag{}, ""))
}

func TestDeleteAnswerRollsBackOnFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.fx.Question("alice", "Q", models.SubjectPolity, 0, "x")
	a := h.fx.Answer(q.ID, "bob", 1)
	c := h.fx.AnswerComment(a.ID, "carol")
	h.fx.LikeAnswer(a.ID, "alice", true)
	h.fx.LikeComment(c.ID, "alice", false)

	failDeletesOn(t, h.db, "answers")

	err := h.mutations.DeleteAnswer(ctx, "bob", a.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))

	assert.Equal(t, int64(1), h.fx.Count(&models.Answer{}, ""))
	assert.Equal(t, int64(1), h.fx.Count(&models.Comment{}, "answer_id = ?", a.ID))
	assert.Equal(t, int64(2), h.fx.Count(&models.Like{}, ""))
}
