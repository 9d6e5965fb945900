package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
	"upscoverflow/internal/apperror"
	"upscoverflow/internal/metrics"
	"upscoverflow/internal/models"
	"upscoverflow/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxTitleLength = 150
	maxTags        = 5
	maxTagLength   = 30
)

// QuestionInput is the body of question create and update requests.
// Format is "markdown" or empty for editor HTML.
type QuestionInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Subject     string   `json:"subject"`
	Tags        []string `json:"tags"`
	Format      string   `json:"format"`
}

type AnswerInput struct {
	QuestionID uint   `json:"questionId"`
	Content    string `json:"content"`
	Format     string `json:"format"`
}

type CommentInput struct {
	QuestionID *uint  `json:"questionId"`
	AnswerID   *uint  `json:"answerId"`
	Content    string `json:"content"`
}

// MutationService owns every write. Multi-table writes run in one transaction.
type MutationService struct {
	db      *gorm.DB
	counter *EngagementCounter
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewMutationService(conn *gorm.DB, m *metrics.Metrics, log *zap.Logger) *MutationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MutationService{
		db:      conn,
		counter: NewEngagementCounter(conn),
		metrics: m,
		log:     log,
	}
}

func requireViewer(viewerID string) error {
	if viewerID == "" {
		return apperror.Unauthorized("Unauthorized")
	}
	return nil
}

// translate keeps AppErrors and wraps anything else as an internal failure.
func translate(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal(message, err)
}

// ToggleLike records the viewer's vote on the target. An existing vote is updated
// in place; the unique (liker, target) index makes concurrent toggles converge on one row.
func (s *MutationService) ToggleLike(ctx context.Context, viewerID string, in TargetInput, isLiked bool) (Engagement, error) {
	if err := requireViewer(viewerID); err != nil {
		return Engagement{}, err
	}
	target, err := in.Resolve()
	if err != nil {
		return Engagement{}, err
	}

	tx := s.db.WithContext(ctx)
	ok, err := targetExists(tx, target)
	if err != nil {
		return Engagement{}, apperror.Internal("Failed to load "+string(target.Kind), err)
	}
	if !ok {
		return Engagement{}, notFound(target.Kind)
	}

	like := models.Like{LikerID: viewerID, IsLiked: isLiked}
	id := target.ID
	switch target.Kind {
	case TargetQuestion:
		like.QuestionID = &id
	case TargetAnswer:
		like.AnswerID = &id
	case TargetComment:
		like.CommentID = &id
	}

	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "liker_id"}, {Name: target.Kind.column()}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_liked":   isLiked,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&like).Error
	if err != nil {
		return Engagement{}, apperror.Internal("Failed to toggle like", err)
	}
	s.metrics.RecordLikeToggle(string(target.Kind), isLiked)

	e, err := s.counter.Counts(ctx, target, viewerID)
	if err != nil {
		return Engagement{}, apperror.Internal("Failed to count likes", err)
	}
	return e, nil
}

// DeleteLike removes the viewer's vote. Deleting a vote that does not exist is a
// bad request.
func (s *MutationService) DeleteLike(ctx context.Context, viewerID string, in TargetInput) (Engagement, error) {
	if err := requireViewer(viewerID); err != nil {
		return Engagement{}, err
	}
	target, err := in.Resolve()
	if err != nil {
		return Engagement{}, err
	}

	res := s.db.WithContext(ctx).
		Where("liker_id = ? AND "+target.Kind.column()+" = ?", viewerID, target.ID).
		Delete(&models.Like{})
	if res.Error != nil {
		return Engagement{}, apperror.Internal("Failed to delete like", res.Error)
	}
	if res.RowsAffected == 0 {
		return Engagement{}, apperror.BadRequest("Like not found")
	}

	e, err := s.counter.Counts(ctx, target, viewerID)
	if err != nil {
		return Engagement{}, apperror.Internal("Failed to count likes", err)
	}
	return e, nil
}

// loadOwned fetches the row into dest and checks that owner(dest) is the viewer.
func loadOwned(tx *gorm.DB, dest interface{}, id uint, kind TargetKind, owner func() string, viewerID string) error {
	if err := tx.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(kind)
		}
		return err
	}
	if owner() != viewerID {
		return apperror.Forbidden("You are not allowed to modify this " + string(kind))
	}
	return nil
}

// deleteComments removes the comments with the given ids and every like on them.
func deleteComments(tx *gorm.DB, commentIDs []uint) error {
	if len(commentIDs) == 0 {
		return nil
	}
	for _, chunk := range chunkIDs(commentIDs, maxInParams) {
		if err := tx.Where("comment_id IN ?", chunk).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", chunk).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteAnswers removes the answers, their comments and every like on either.
func deleteAnswers(tx *gorm.DB, answerIDs []uint) error {
	if len(answerIDs) == 0 {
		return nil
	}
	for _, chunk := range chunkIDs(answerIDs, maxInParams) {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("answer_id IN ?", chunk).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := deleteComments(tx, commentIDs); err != nil {
			return err
		}
		if err := tx.Where("answer_id IN ?", chunk).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", chunk).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteQuestion removes the question with its answers, comments, likes, saves and
// tags. Either everything is removed or nothing is.
func (s *MutationService) DeleteQuestion(ctx context.Context, viewerID string, id uint) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Question
		if err := loadOwned(tx, &q, id, TargetQuestion, func() string { return q.AskerID }, viewerID); err != nil {
			return err
		}

		var answerIDs, commentIDs []uint
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("question_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if err := deleteComments(tx, commentIDs); err != nil {
			return err
		}
		if err := deleteAnswers(tx, answerIDs); err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Save{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, id).Error
	})
	if err != nil {
		if _, ok := apperror.As(err); !ok {
			s.log.Error("Question delete aborted", zap.Uint("question_id", id), zap.Error(err))
		}
		return translate(err, "Failed to delete question")
	}

	s.metrics.RecordCascadeDelete("question")
	return nil
}

// DeleteAnswer removes the answer with its comments and all likes on either.
func (s *MutationService) DeleteAnswer(ctx context.Context, viewerID string, id uint) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Answer
		if err := loadOwned(tx, &a, id, TargetAnswer, func() string { return a.AnswererID }, viewerID); err != nil {
			return err
		}
		return deleteAnswers(tx, []uint{id})
	})
	if err != nil {
		if _, ok := apperror.As(err); !ok {
			s.log.Error("Answer delete aborted", zap.Uint("answer_id", id), zap.Error(err))
		}
		return translate(err, "Failed to delete answer")
	}

	s.metrics.RecordCascadeDelete("answer")
	return nil
}

// DeleteComment removes the comment and its likes.
func (s *MutationService) DeleteComment(ctx context.Context, viewerID string, id uint) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		if err := loadOwned(tx, &c, id, TargetComment, func() string { return c.CommenterID }, viewerID); err != nil {
			return err
		}
		return deleteComments(tx, []uint{id})
	})
	if err != nil {
		if _, ok := apperror.As(err); !ok {
			s.log.Error("Comment delete aborted", zap.Uint("comment_id", id), zap.Error(err))
		}
		return translate(err, "Failed to delete comment")
	}

	s.metrics.RecordCascadeDelete("comment")
	return nil
}

// validate normalizes the input and returns the field errors, if any.
func (in *QuestionInput) validate() (models.Subject, []string) {
	var problems []string

	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		problems = append(problems, "title is required")
	case utf8.RuneCountInString(in.Title) > maxTitleLength:
		problems = append(problems, "title must be at most 150 characters")
	}

	if strings.TrimSpace(utils.Excerpt(in.Description, 0)) == "" {
		problems = append(problems, "description is required")
	}

	subject, ok := models.ParseSubject(in.Subject)
	if !ok {
		problems = append(problems, "subject must be one of the known subjects")
	}

	in.Tags = utils.NormalizeTags(in.Tags)
	if len(in.Tags) == 0 {
		problems = append(problems, "at least one tag is required")
	}
	if len(in.Tags) > maxTags {
		problems = append(problems, "at most 5 tags are allowed")
	}
	for _, t := range in.Tags {
		if utf8.RuneCountInString(t) > maxTagLength {
			problems = append(problems, "tag "+t+" is longer than 30 characters")
		}
	}
	return subject, problems
}

func tagRows(names []string) []models.QuestionTag {
	rows := make([]models.QuestionTag, len(names))
	for i, n := range names {
		rows[i] = models.QuestionTag{Name: n}
	}
	return rows
}

func (s *MutationService) CreateQuestion(ctx context.Context, viewerID string, in QuestionInput) (*models.Question, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	subject, problems := in.validate()
	if len(problems) > 0 {
		return nil, apperror.BadRequest("Invalid question", problems...)
	}

	q := &models.Question{
		Title:       in.Title,
		Description: utils.RichText(in.Description, in.Format),
		Subject:     subject,
		Tags:        tagRows(in.Tags),
		AskerID:     viewerID,
	}
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, apperror.Internal("Failed to create question", err)
	}
	return q, nil
}

// UpdateQuestion replaces the question's fields and tag set. Only the asker may edit.
func (s *MutationService) UpdateQuestion(ctx context.Context, viewerID string, id uint, in QuestionInput) (*models.Question, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	subject, problems := in.validate()
	if len(problems) > 0 {
		return nil, apperror.BadRequest("Invalid question", problems...)
	}

	var q models.Question
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, &q, id, TargetQuestion, func() string { return q.AskerID }, viewerID); err != nil {
			return err
		}

		q.Title = in.Title
		q.Description = utils.RichText(in.Description, in.Format)
		q.Subject = subject
		if err := tx.Model(&q).Select("title", "description", "subject", "updated_at").Updates(&q).Error; err != nil {
			return err
		}

		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionTag{}).Error; err != nil {
			return err
		}
		tags := tagRows(in.Tags)
		for i := range tags {
			tags[i].QuestionID = id
		}
		if err := tx.Create(&tags).Error; err != nil {
			return err
		}
		q.Tags = tags
		return nil
	})
	if err != nil {
		return nil, translate(err, "Failed to update question")
	}
	return &q, nil
}

func (s *MutationService) CreateAnswer(ctx context.Context, viewerID string, in AnswerInput) (*models.Answer, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	if in.QuestionID == 0 {
		return nil, apperror.BadRequest("Invalid answer", "questionId is required")
	}
	if strings.TrimSpace(utils.Excerpt(in.Content, 0)) == "" {
		return nil, apperror.BadRequest("Invalid answer", "content is required")
	}

	tx := s.db.WithContext(ctx)
	ok, err := targetExists(tx, Target{Kind: TargetQuestion, ID: in.QuestionID})
	if err != nil {
		return nil, apperror.Internal("Failed to load question", err)
	}
	if !ok {
		return nil, notFound(TargetQuestion)
	}

	a := &models.Answer{
		QuestionID: in.QuestionID,
		AnswererID: viewerID,
		Content:    utils.RichText(in.Content, in.Format),
	}
	if err := tx.Create(a).Error; err != nil {
		return nil, apperror.Internal("Failed to create answer", err)
	}
	return a, nil
}

// CreateComment attaches a plain-text comment to exactly one question or answer.
func (s *MutationService) CreateComment(ctx context.Context, viewerID string, in CommentInput) (*models.Comment, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	parent, err := TargetInput{QuestionID: in.QuestionID, AnswerID: in.AnswerID}.Resolve()
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperror.BadRequest("Invalid comment", "content is required")
	}

	tx := s.db.WithContext(ctx)
	ok, err := targetExists(tx, parent)
	if err != nil {
		return nil, apperror.Internal("Failed to load "+string(parent.Kind), err)
	}
	if !ok {
		return nil, notFound(parent.Kind)
	}

	c := &models.Comment{
		QuestionID:  in.QuestionID,
		AnswerID:    in.AnswerID,
		CommenterID: viewerID,
		Content:     utils.SanitizeRichText(content),
	}
	if err := tx.Create(c).Error; err != nil {
		return nil, apperror.Internal("Failed to create comment", err)
	}
	return c, nil
}

// ToggleSave bookmarks the question, or removes the bookmark if present. It returns
// whether the question is saved afterwards.
func (s *MutationService) ToggleSave(ctx context.Context, viewerID string, questionID uint) (bool, error) {
	if err := requireViewer(viewerID); err != nil {
		return false, err
	}

	saved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := targetExists(tx, Target{Kind: TargetQuestion, ID: questionID})
		if err != nil {
			return err
		}
		if !ok {
			return notFound(TargetQuestion)
		}

		res := tx.Where("saver_id = ? AND question_id = ?", viewerID, questionID).Delete(&models.Save{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		saved = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Save{SaverID: viewerID, QuestionID: questionID}).Error
	})
	if err != nil {
		return false, translate(err, "Failed to toggle save")
	}
	return saved, nil
}
