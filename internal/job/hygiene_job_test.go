package job

import (
	"context"
	"testing"
	"upscoverflow/internal/metrics"
	"upscoverflow/internal/models"
	"upscoverflow/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHygieneJob_RemovesOrphans(t *testing.T) {
	conn := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, conn)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), nil)

	kept := fx.Question("alice", "Kept", models.SubjectPolity, 0)
	a := fx.Answer(kept.ID, "bob", 1)
	c := fx.QuestionComment(kept.ID, "carol")
	fx.Save(kept.ID, "bob", 2)
	fx.LikeQuestion(kept.ID, "bob", true)
	fx.LikeAnswer(a.ID, "carol", true)
	fx.LikeComment(c.ID, "alice", false)

	// Rows left behind by a raw delete that skipped the cascade.
	gone := fx.Question("alice", "Gone", models.SubjectHistory, 3)
	goneAnswer := fx.Answer(gone.ID, "bob", 4)
	goneComment := fx.AnswerComment(goneAnswer.ID, "carol")
	fx.Save(gone.ID, "bob", 5)
	fx.LikeQuestion(gone.ID, "carol", true)
	fx.LikeAnswer(goneAnswer.ID, "alice", true)
	fx.LikeComment(goneComment.ID, "bob", true)
	require.NoError(t, conn.Exec("DELETE FROM comments WHERE id = ?", goneComment.ID).Error)
	require.NoError(t, conn.Exec("DELETE FROM answers WHERE id = ?", goneAnswer.ID).Error)
	require.NoError(t, conn.Exec("DELETE FROM questions WHERE id = ?", gone.ID).Error)

	job := NewHygieneJob(conn, m, zap.NewNop())
	removed, err := job.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		"saves":          1,
		"likes_question": 1,
		"likes_answer":   1,
		"likes_comment":  1,
	}, removed)
	assert.Equal(t, int64(1), fx.Count(&models.Save{}, ""))
	assert.Equal(t, int64(3), fx.Count(&models.Like{}, ""))

	assert.Equal(t, 1.0, promtest.ToFloat64(m.CleanupRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.CleanupRowsRemoved.WithLabelValues("saves")))

	// A second pass finds nothing.
	removed, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	for rule, n := range removed {
		assert.Zero(t, n, rule)
	}
}

func TestSchedule_RejectsBadSchedule(t *testing.T) {
	job := NewHygieneJob(nil, nil, nil)

	_, err := Schedule("not a cron", job)
	assert.Error(t, err)

	c, err := Schedule("0 3 * * *", job)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}
