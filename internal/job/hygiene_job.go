package job

import (
	"context"
	"fmt"
	"time"
	"upscoverflow/internal/metrics"
	"upscoverflow/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// orphanRule describes one class of dangling rows.
type orphanRule struct {
	name  string
	model interface{}
	where string
}

var orphanRules = []orphanRule{
	{
		name:  "saves",
		model: &models.Save{},
		where: "NOT EXISTS (SELECT 1 FROM questions q WHERE q.id = saves.question_id)",
	},
	{
		name:  "likes_question",
		model: &models.Like{},
		where: "question_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM questions q WHERE q.id = likes.question_id)",
	},
	{
		name:  "likes_answer",
		model: &models.Like{},
		where: "answer_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM answers a WHERE a.id = likes.answer_id)",
	},
	{
		name:  "likes_comment",
		model: &models.Like{},
		where: "comment_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM comments c WHERE c.id = likes.comment_id)",
	},
}

// HygieneJob removes likes and saves whose target no longer exists.
type HygieneJob struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewHygieneJob(db *gorm.DB, m *metrics.Metrics, logger *zap.Logger) *HygieneJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HygieneJob{db: db, logger: logger, metrics: m, timeout: 5 * time.Minute}
}

// Run implements cron.Job.
func (j *HygieneJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

// RunOnce deletes every class of orphan row and reports how many rows each removed.
// It stops at the first failing rule.
func (j *HygieneJob) RunOnce(ctx context.Context) (map[string]int64, error) {
	j.logger.Info("Starting hygiene job")

	removed := make(map[string]int64, len(orphanRules))
	for _, rule := range orphanRules {
		res := j.db.WithContext(ctx).Where(rule.where).Delete(rule.model)
		if res.Error != nil {
			err := fmt.Errorf("cleanup %s: %w", rule.name, res.Error)
			j.logger.Error("Hygiene job failed", zap.String("rule", rule.name), zap.Error(err))
			j.metrics.RecordCleanup(removed, err)
			return removed, err
		}
		removed[rule.name] = res.RowsAffected
		if res.RowsAffected > 0 {
			j.logger.Info("Removed orphan rows",
				zap.String("rule", rule.name),
				zap.Int64("count", res.RowsAffected),
			)
		}
	}

	j.metrics.RecordCleanup(removed, nil)
	j.logger.Info("Hygiene job completed",
		zap.Int64("saves", removed["saves"]),
		zap.Int64("likes", removed["likes_question"]+removed["likes_answer"]+removed["likes_comment"]),
	)
	return removed, nil
}

// Schedule registers the job on a new cron scheduler. The caller starts and stops it.
func Schedule(spec string, j *HygieneJob) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{j.logger})))
	if _, err := c.AddJob(spec, j); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
