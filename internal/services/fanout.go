package services

import (
	"context"
	"upscoverflow/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// maxInParams bounds the ids bound into a single IN clause.
const maxInParams = 500

func chunkIDs(ids []uint, size int) [][]uint {
	var chunks [][]uint
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// QuestionCounts are the child counts of one question. Comments includes the
// comments left on the question's answers.
type QuestionCounts struct {
	Answers  int64
	Comments int64
}

// GroupCounts are the per-group totals behind the subject, tag and user listings.
type GroupCounts struct {
	Questions int64 `json:"questionsCount"`
	Answers   int64 `json:"answersCount"`
	Comments  int64 `json:"commentsCount"`
	Tags      int64 `json:"tagsCount"`
}

// Aggregator gathers child counts with one grouped query per relation instead of
// one query per parent.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(conn *gorm.DB) *Aggregator {
	return &Aggregator{db: conn}
}

type idCount struct {
	ID    uint
	Count int64
}

type keyCount struct {
	GroupKey string
	Count    int64
}

// countByID runs build once per chunk of ids concurrently and sums the grouped rows.
func (a *Aggregator) countByID(ctx context.Context, ids []uint, build func(tx *gorm.DB, chunk []uint) *gorm.DB) (map[uint]int64, error) {
	chunks := chunkIDs(ids, maxInParams)
	rows := make([][]idCount, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			return build(a.db.WithContext(gctx), chunk).Scan(&rows[i]).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[uint]int64)
	for _, chunkRows := range rows {
		for _, r := range chunkRows {
			out[r.ID] += r.Count
		}
	}
	return out, nil
}

func (a *Aggregator) countByKey(ctx context.Context, q func(tx *gorm.DB) *gorm.DB) (map[string]int64, error) {
	var rows []keyCount
	if err := q(a.db.WithContext(ctx)).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] += r.Count
	}
	return out, nil
}

// QuestionMetrics returns answer and comment counts for every id in ids.
func (a *Aggregator) QuestionMetrics(ctx context.Context, ids []uint) (map[uint]QuestionCounts, error) {
	result := make(map[uint]QuestionCounts, len(ids))
	for _, id := range ids {
		result[id] = QuestionCounts{}
	}
	if len(ids) == 0 {
		return result, nil
	}

	var answers, direct, nested map[uint]int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		answers, err = a.countByID(gctx, ids, func(tx *gorm.DB, chunk []uint) *gorm.DB {
			return tx.Model(&models.Answer{}).
				Select("question_id AS id, COUNT(*) AS count").
				Where("question_id IN ?", chunk).
				Group("question_id")
		})
		return err
	})
	g.Go(func() (err error) {
		direct, err = a.countByID(gctx, ids, func(tx *gorm.DB, chunk []uint) *gorm.DB {
			return tx.Model(&models.Comment{}).
				Select("question_id AS id, COUNT(*) AS count").
				Where("question_id IN ?", chunk).
				Group("question_id")
		})
		return err
	})
	g.Go(func() (err error) {
		nested, err = a.countByID(gctx, ids, func(tx *gorm.DB, chunk []uint) *gorm.DB {
			return tx.Table("comments").
				Select("answers.question_id AS id, COUNT(comments.id) AS count").
				Joins("JOIN answers ON answers.id = comments.answer_id").
				Where("answers.question_id IN ?", chunk).
				Group("answers.question_id")
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		result[id] = QuestionCounts{
			Answers:  answers[id],
			Comments: direct[id] + nested[id],
		}
	}
	return result, nil
}

// AnswerCommentCounts returns the number of comments on every answer in ids.
func (a *Aggregator) AnswerCommentCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	if len(ids) == 0 {
		return map[uint]int64{}, nil
	}
	return a.countByID(ctx, ids, func(tx *gorm.DB, chunk []uint) *gorm.DB {
		return tx.Model(&models.Comment{}).
			Select("answer_id AS id, COUNT(*) AS count").
			Where("answer_id IN ?", chunk).
			Group("answer_id")
	})
}

// groupQueries holds one grouped count query per metric; each returns (key, count) rows.
type groupQueries struct {
	questions func(tx *gorm.DB) *gorm.DB
	answers   func(tx *gorm.DB) *gorm.DB
	comments  []func(tx *gorm.DB) *gorm.DB
	tags      func(tx *gorm.DB) *gorm.DB
}

func (a *Aggregator) runGroups(ctx context.Context, qs groupQueries) (map[string]GroupCounts, error) {
	var questions, answers, tags map[string]int64
	comments := make([]map[string]int64, len(qs.comments))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		questions, err = a.countByKey(gctx, qs.questions)
		return err
	})
	g.Go(func() (err error) {
		answers, err = a.countByKey(gctx, qs.answers)
		return err
	})
	for i, q := range qs.comments {
		i, q := i, q
		g.Go(func() (err error) {
			comments[i], err = a.countByKey(gctx, q)
			return err
		})
	}
	g.Go(func() (err error) {
		tags, err = a.countByKey(gctx, qs.tags)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]GroupCounts)
	touch := func(m map[string]int64, set func(*GroupCounts, int64)) {
		for k, n := range m {
			gc := out[k]
			set(&gc, n)
			out[k] = gc
		}
	}
	touch(questions, func(gc *GroupCounts, n int64) { gc.Questions = n })
	touch(answers, func(gc *GroupCounts, n int64) { gc.Answers = n })
	for _, m := range comments {
		touch(m, func(gc *GroupCounts, n int64) { gc.Comments += n })
	}
	touch(tags, func(gc *GroupCounts, n int64) { gc.Tags = n })
	return out, nil
}

// SubjectMetrics groups by question subject. Tags counts distinct tags used in the subject.
func (a *Aggregator) SubjectMetrics(ctx context.Context) (map[string]GroupCounts, error) {
	return a.runGroups(ctx, groupQueries{
		questions: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("questions").
				Select("subject AS group_key, COUNT(*) AS count").
				Group("subject")
		},
		answers: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("answers").
				Select("questions.subject AS group_key, COUNT(answers.id) AS count").
				Joins("JOIN questions ON questions.id = answers.question_id").
				Group("questions.subject")
		},
		comments: []func(tx *gorm.DB) *gorm.DB{
			func(tx *gorm.DB) *gorm.DB {
				return tx.Table("comments").
					Select("questions.subject AS group_key, COUNT(comments.id) AS count").
					Joins("JOIN questions ON questions.id = comments.question_id").
					Group("questions.subject")
			},
			func(tx *gorm.DB) *gorm.DB {
				return tx.Table("comments").
					Select("questions.subject AS group_key, COUNT(comments.id) AS count").
					Joins("JOIN answers ON answers.id = comments.answer_id").
					Joins("JOIN questions ON questions.id = answers.question_id").
					Group("questions.subject")
			},
		},
		tags: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("question_tags").
				Select("questions.subject AS group_key, COUNT(DISTINCT question_tags.name) AS count").
				Joins("JOIN questions ON questions.id = question_tags.question_id").
				Group("questions.subject")
		},
	})
}

// TagMetrics groups by tag name. Tags counts the distinct tags that co-occur with
// the tag on at least one question, the tag itself included.
func (a *Aggregator) TagMetrics(ctx context.Context) (map[string]GroupCounts, error) {
	return a.runGroups(ctx, groupQueries{
		questions: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("question_tags").
				Select("name AS group_key, COUNT(DISTINCT question_id) AS count").
				Group("name")
		},
		answers: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("question_tags").
				Select("question_tags.name AS group_key, COUNT(answers.id) AS count").
				Joins("JOIN answers ON answers.question_id = question_tags.question_id").
				Group("question_tags.name")
		},
		comments: []func(tx *gorm.DB) *gorm.DB{
			func(tx *gorm.DB) *gorm.DB {
				return tx.Table("question_tags").
					Select("question_tags.name AS group_key, COUNT(comments.id) AS count").
					Joins("JOIN comments ON comments.question_id = question_tags.question_id").
					Group("question_tags.name")
			},
			func(tx *gorm.DB) *gorm.DB {
				return tx.Table("question_tags").
					Select("question_tags.name AS group_key, COUNT(comments.id) AS count").
					Joins("JOIN answers ON answers.question_id = question_tags.question_id").
					Joins("JOIN comments ON comments.answer_id = answers.id").
					Group("question_tags.name")
			},
		},
		tags: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("question_tags AS t1").
				Select("t1.name AS group_key, COUNT(DISTINCT t2.name) AS count").
				Joins("JOIN question_tags AS t2 ON t2.question_id = t1.question_id").
				Group("t1.name")
		},
	})
}

// UserMetrics groups by author id: questions asked, answers given, comments written
// and distinct tags across the user's questions.
func (a *Aggregator) UserMetrics(ctx context.Context) (map[string]GroupCounts, error) {
	return a.runGroups(ctx, groupQueries{
		questions: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("questions").
				Select("asker_id AS group_key, COUNT(*) AS count").
				Group("asker_id")
		},
		answers: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("answers").
				Select("answerer_id AS group_key, COUNT(*) AS count").
				Group("answerer_id")
		},
		comments: []func(tx *gorm.DB) *gorm.DB{
			func(tx *gorm.DB) *gorm.DB {
				return tx.Table("comments").
					Select("commenter_id AS group_key, COUNT(*) AS count").
					Group("commenter_id")
			},
		},
		tags: func(tx *gorm.DB) *gorm.DB {
			return tx.Table("question_tags").
				Select("questions.asker_id AS group_key, COUNT(DISTINCT question_tags.name) AS count").
				Joins("JOIN questions ON questions.id = question_tags.question_id").
				Group("questions.asker_id")
		},
	})
}
