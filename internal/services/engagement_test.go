package services

import (
	"context"
	"testing"
	"upscoverflow/internal/apperror"
	"upscoverflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetInputResolve(t *testing.T) {
	target, err := TargetInput{AnswerID: uintPtr(7)}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, Target{Kind: TargetAnswer, ID: 7}, target)

	_, err = TargetInput{}.Resolve()
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	_, err = TargetInput{QuestionID: uintPtr(1), CommentID: uintPtr(2)}.Resolve()
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	_, err = TargetInput{QuestionID: uintPtr(0)}.Resolve()
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestCountsZeroTarget(t *testing.T) {
	h := newHarness(t)
	counter := NewEngagementCounter(h.db)

	e, err := counter.Counts(context.Background(), Target{Kind: TargetQuestion}, "alice")
	require.NoError(t, err)
	assert.Equal(t, Engagement{}, e)
}

func TestCountsWithViewer(t *testing.T) {
	h := newHarness(t)
	q := h.fx.Question("alice", "Monsoon", models.SubjectGeography, 0, "climate")
	h.fx.LikeQuestion(q.ID, "bob", true)
	h.fx.LikeQuestion(q.ID, "carol", true)
	h.fx.LikeQuestion(q.ID, "dave", false)

	counter := NewEngagementCounter(h.db)
	target := Target{Kind: TargetQuestion, ID: q.ID}

	e, err := counter.Counts(context.Background(), target, "dave")
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.Likes)
	assert.Equal(t, int64(1), e.Dislikes)
	assert.Equal(t, int64(1), e.VoteScore)
	assert.False(t, e.IsLiked)
	assert.True(t, e.IsDisliked)

	e, err = counter.Counts(context.Background(), target, "")
	require.NoError(t, err)
	assert.False(t, e.IsLiked || e.IsDisliked)
	assert.Equal(t, e.Likes-e.Dislikes, e.Score())
}

func TestCountsForBatch(t *testing.T) {
	h := newHarness(t)
	q1 := h.fx.Question("alice", "One", models.SubjectPolity, 0, "a")
	q2 := h.fx.Question("alice", "Two", models.SubjectPolity, 1, "a")
	q3 := h.fx.Question("alice", "Three", models.SubjectPolity, 2, "a")
	h.fx.LikeQuestion(q1.ID, "bob", true)
	h.fx.LikeQuestion(q1.ID, "carol", false)
	h.fx.LikeQuestion(q1.ID, "dave", false)
	h.fx.LikeQuestion(q2.ID, "bob", false)

	// likes on other target kinds must not leak into question counts
	a := h.fx.Answer(q3.ID, "bob", 3)
	h.fx.LikeAnswer(a.ID, "carol", true)

	counter := NewEngagementCounter(h.db)
	got, err := counter.CountsFor(context.Background(), TargetQuestion, []uint{q1.ID, q2.ID, q3.ID}, "bob")
	require.NoError(t, err)

	assert.Equal(t, Engagement{Likes: 1, Dislikes: 2, VoteScore: -1, IsLiked: true}, got[q1.ID])
	assert.Equal(t, Engagement{Likes: 0, Dislikes: 1, VoteScore: -1, IsDisliked: true}, got[q2.ID])
	assert.Equal(t, Engagement{}, got[q3.ID])

	for id, e := range got {
		single, err := counter.Counts(context.Background(), Target{Kind: TargetQuestion, ID: id}, "bob")
		require.NoError(t, err)
		assert.Equal(t, single, e, "batched and single counts differ for %d", id)
	}
}
