package services

import (
	"context"
	"upscoverflow/internal/apperror"
	"upscoverflow/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// TargetKind names the entity a like points at.
type TargetKind string

const (
	TargetQuestion TargetKind = "question"
	TargetAnswer   TargetKind = "answer"
	TargetComment  TargetKind = "comment"
)

// column is the likes/comments column that references this kind.
func (k TargetKind) column() string {
	switch k {
	case TargetAnswer:
		return "answer_id"
	case TargetComment:
		return "comment_id"
	default:
		return "question_id"
	}
}

type Target struct {
	Kind TargetKind
	ID   uint
}

// TargetInput carries the questionId/answerId/commentId triple sent by clients.
type TargetInput struct {
	QuestionID *uint `json:"questionId" form:"questionId"`
	AnswerID   *uint `json:"answerId" form:"answerId"`
	CommentID  *uint `json:"commentId" form:"commentId"`
}

// IsEmpty reports whether no target id was supplied.
func (in TargetInput) IsEmpty() bool {
	return in.QuestionID == nil && in.AnswerID == nil && in.CommentID == nil
}

// Resolve checks that exactly one id is set.
func (in TargetInput) Resolve() (Target, error) {
	var targets []Target
	if in.QuestionID != nil {
		targets = append(targets, Target{Kind: TargetQuestion, ID: *in.QuestionID})
	}
	if in.AnswerID != nil {
		targets = append(targets, Target{Kind: TargetAnswer, ID: *in.AnswerID})
	}
	if in.CommentID != nil {
		targets = append(targets, Target{Kind: TargetComment, ID: *in.CommentID})
	}
	if len(targets) != 1 {
		return Target{}, apperror.BadRequest("Invalid target", "exactly one of questionId, answerId or commentId is required")
	}
	if targets[0].ID == 0 {
		return Target{}, apperror.BadRequest("Invalid target", string(targets[0].Kind)+"Id must be a positive integer")
	}
	return targets[0], nil
}

// Engagement is the like summary of one target as seen by one viewer.
type Engagement struct {
	Likes      int64 `json:"likes"`
	Dislikes   int64 `json:"dislikes"`
	VoteScore  int64 `json:"voteScore"`
	IsLiked    bool  `json:"isLiked"`
	IsDisliked bool  `json:"isDisliked"`
}

// Score is likes minus dislikes.
func (e Engagement) Score() int64 {
	return e.Likes - e.Dislikes
}

func (e Engagement) withScore() Engagement {
	e.VoteScore = e.Score()
	return e
}

// EngagementCounter reads like counts. It never caches.
type EngagementCounter struct {
	db *gorm.DB
}

func NewEngagementCounter(conn *gorm.DB) *EngagementCounter {
	return &EngagementCounter{db: conn}
}

// Counts returns the engagement of a single target. A zero target id yields zero
// counts. The four reads run concurrently.
func (c *EngagementCounter) Counts(ctx context.Context, target Target, viewerID string) (Engagement, error) {
	var e Engagement
	if target.ID == 0 {
		return e, nil
	}

	col := target.Kind.column()
	likes := func() *gorm.DB {
		return c.db.WithContext(ctx).Model(&models.Like{}).Where(col+" = ?", target.ID)
	}

	var likedCount, dislikedCount int64
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return likes().Where("is_liked = ?", true).Count(&e.Likes).Error
	})
	g.Go(func() error {
		return likes().Where("is_liked = ?", false).Count(&e.Dislikes).Error
	})
	if viewerID != "" {
		g.Go(func() error {
			return likes().Where("liker_id = ? AND is_liked = ?", viewerID, true).Count(&likedCount).Error
		})
		g.Go(func() error {
			return likes().Where("liker_id = ? AND is_liked = ?", viewerID, false).Count(&dislikedCount).Error
		})
	}
	if err := g.Wait(); err != nil {
		return Engagement{}, err
	}

	e.IsLiked = likedCount > 0
	e.IsDisliked = dislikedCount > 0
	return e.withScore(), nil
}

// CountsFor is the batched form of Counts used by listings. Every id in ids is
// present in the result; ids without likes map to zero engagement.
func (c *EngagementCounter) CountsFor(ctx context.Context, kind TargetKind, ids []uint, viewerID string) (map[uint]Engagement, error) {
	result := make(map[uint]Engagement, len(ids))
	for _, id := range ids {
		result[id] = Engagement{}
	}
	if len(ids) == 0 {
		return result, nil
	}

	col := kind.column()
	type tally struct {
		TargetID uint
		Likes    int64
		Dislikes int64
	}
	type vote struct {
		TargetID uint
		IsLiked  bool
	}

	chunks := chunkIDs(ids, maxInParams)
	tallies := make([][]tally, len(chunks))
	votes := make([][]vote, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			return c.db.WithContext(gctx).Model(&models.Like{}).
				Select(col+" AS target_id, "+
					"SUM(CASE WHEN is_liked = ? THEN 1 ELSE 0 END) AS likes, "+
					"SUM(CASE WHEN is_liked = ? THEN 0 ELSE 1 END) AS dislikes", true, true).
				Where(col+" IN ?", chunk).
				Group(col).
				Scan(&tallies[i]).Error
		})
		if viewerID != "" {
			g.Go(func() error {
				return c.db.WithContext(gctx).Model(&models.Like{}).
					Select(col+" AS target_id, is_liked").
					Where("liker_id = ? AND "+col+" IN ?", viewerID, chunk).
					Scan(&votes[i]).Error
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rows := range tallies {
		for _, r := range rows {
			e := result[r.TargetID]
			e.Likes, e.Dislikes = r.Likes, r.Dislikes
			result[r.TargetID] = e
		}
	}
	for _, rows := range votes {
		for _, v := range rows {
			e := result[v.TargetID]
			e.IsLiked = v.IsLiked
			e.IsDisliked = !v.IsLiked
			result[v.TargetID] = e
		}
	}
	for id, e := range result {
		result[id] = e.withScore()
	}
	return result, nil
}
