package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
	"upscoverflow/internal/apperror"
	"upscoverflow/internal/identity"
	"upscoverflow/internal/metrics"
	"upscoverflow/internal/models"
	"upscoverflow/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	excerptLength            = 180
	profileLookupConcurrency = 8
)

// PageQuery carries the paging and ordering parameters shared by every listing.
type PageQuery struct {
	Page   int
	Limit  int
	SortBy string
}

// QuestionQuery filters the question listings. Search is matched loosely against titles.
type QuestionQuery struct {
	PageQuery
	Subject string
	Tag     string
	Search  string
}

type AnswerQuery struct {
	PageQuery
	QuestionID uint
}

// ListingService assembles the ranked, paginated, profile-enriched listings.
type ListingService struct {
	db        *gorm.DB
	counter   *EngagementCounter
	agg       *Aggregator
	directory identity.Directory
	metrics   *metrics.Metrics
	log       *zap.Logger
	maxLimit  int
}

func NewListingService(conn *gorm.DB, directory identity.Directory, m *metrics.Metrics, log *zap.Logger, maxLimit int) *ListingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListingService{
		db:        conn,
		counter:   NewEngagementCounter(conn),
		agg:       NewAggregator(conn),
		directory: directory,
		metrics:   m,
		log:       log,
		maxLimit:  maxLimit,
	}
}

func (s *ListingService) validatePage(q PageQuery) error {
	if q.Page < 1 {
		return apperror.BadRequest("Invalid Page Number", "page must be greater than or equal to 1")
	}
	if q.Limit < 1 || q.Limit > s.maxLimit {
		return apperror.BadRequest("Invalid limit", "limit must be between 1 and the maximum page size")
	}
	return nil
}

func parseSubjectFilter(raw string) (models.Subject, error) {
	if raw == "" {
		return "", nil
	}
	subject, ok := models.ParseSubject(raw)
	if !ok {
		return "", apperror.BadRequest("Invalid subject", "unknown subject: "+raw)
	}
	return subject, nil
}

// filteredQuestions loads the questions matching subject, tag and an optional
// scope, then applies the fuzzy title match in memory.
func (s *ListingService) filteredQuestions(ctx context.Context, q QuestionQuery, scope func(*gorm.DB) *gorm.DB) ([]models.Question, error) {
	subject, err := parseSubjectFilter(q.Subject)
	if err != nil {
		return nil, err
	}
	matcher, err := utils.FuzzyMatcher(q.Search)
	if err != nil {
		return nil, apperror.BadRequest("Invalid search query")
	}

	tx := s.db.WithContext(ctx).Model(&models.Question{}).Preload("Tags")
	if subject != "" {
		tx = tx.Where("subject = ?", subject)
	}
	if tag := utils.NormalizeTag(q.Tag); tag != "" {
		tx = tx.Where("id IN (?)", s.db.Model(&models.QuestionTag{}).Select("question_id").Where("name = ?", tag))
	}
	if scope != nil {
		tx = scope(tx)
	}

	var questions []models.Question
	if err := tx.Find(&questions).Error; err != nil {
		return nil, apperror.Internal("Failed to load questions", err)
	}

	if matcher == nil {
		return questions, nil
	}
	matched := questions[:0]
	for _, question := range questions {
		if matcher.MatchString(question.Title) {
			matched = append(matched, question)
		}
	}
	return matched, nil
}

// questionItems attaches counts, engagement and the viewer's saved state.
func (s *ListingService) questionItems(ctx context.Context, questions []models.Question, viewerID string) ([]QuestionListItem, error) {
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	var (
		counts     map[uint]QuestionCounts
		engagement map[uint]Engagement
		saved      = map[uint]bool{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = s.agg.QuestionMetrics(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		engagement, err = s.counter.CountsFor(gctx, TargetQuestion, ids, viewerID)
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			var savedIDs []uint
			if err := s.db.WithContext(gctx).Model(&models.Save{}).
				Where("saver_id = ?", viewerID).
				Pluck("question_id", &savedIDs).Error; err != nil {
				return err
			}
			for _, id := range savedIDs {
				saved[id] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal("Failed to aggregate question metrics", err)
	}

	items := make([]QuestionListItem, len(questions))
	for i, q := range questions {
		items[i] = QuestionListItem{
			ID:            q.ID,
			Title:         q.Title,
			Excerpt:       utils.Excerpt(q.Description, excerptLength),
			Subject:       q.Subject,
			Tags:          q.TagNames(),
			AskerID:       q.AskerID,
			Engagement:    engagement[q.ID],
			AnswersCount:  counts[q.ID].Answers,
			CommentsCount: counts[q.ID].Comments,
			IsSaved:       saved[q.ID],
			CreatedAt:     q.CreatedAt,
			UpdatedAt:     q.UpdatedAt,
		}
	}
	return items, nil
}

// resolveProfiles looks up every distinct id concurrently. Failed lookups degrade to
// the Anonymous placeholder and never fail the listing.
func (s *ListingService) resolveProfiles(ctx context.Context, userIDs []string) map[string]identity.Profile {
	profiles := make(map[string]identity.Profile, len(userIDs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(profileLookupConcurrency)
	for _, id := range userIDs {
		id := id
		mu.Lock()
		_, seen := profiles[id]
		if !seen {
			profiles[id] = identity.Anonymous(id)
		}
		mu.Unlock()
		if seen {
			continue
		}

		g.Go(func() error {
			p, err := s.directory.Profile(ctx, id)
			if err != nil {
				if !errors.Is(err, identity.ErrProfileNotFound) {
					s.log.Warn("Profile lookup failed, using placeholder", zap.String("user_id", id), zap.Error(err))
				}
				s.metrics.RecordProfileLookup("fallback")
				return nil
			}
			s.metrics.RecordProfileLookup("ok")
			mu.Lock()
			profiles[id] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return profiles
}

func (s *ListingService) attachAskers(ctx context.Context, items []QuestionListItem) {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].AskerID
	}
	profiles := s.resolveProfiles(ctx, ids)
	for i := range items {
		items[i].Asker = profiles[items[i].AskerID]
	}
}

// Questions is the main question listing. A page past the end is returned empty.
func (s *ListingService) Questions(ctx context.Context, viewerID string, q QuestionQuery) (*Page[QuestionListItem], error) {
	if err := s.validatePage(q.PageQuery); err != nil {
		return nil, err
	}

	questions, err := s.filteredQuestions(ctx, q, nil)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, apperror.NotFound("No questions found")
	}

	items, err := s.questionItems(ctx, questions, viewerID)
	if err != nil {
		return nil, err
	}
	SortQuestions(items, parseSort(q.SortBy, questionSortKeys, SortDateDesc))

	page, _ := Paginate(items, q.Page, q.Limit)
	s.attachAskers(ctx, page.Items)
	s.metrics.RecordListing("questions", len(page.Items))
	return &page, nil
}

// SavedQuestions lists the viewer's bookmarks. A page past the end is a caller error.
func (s *ListingService) SavedQuestions(ctx context.Context, viewerID string, q QuestionQuery) (*Page[QuestionListItem], error) {
	if viewerID == "" {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	if err := s.validatePage(q.PageQuery); err != nil {
		return nil, err
	}

	var saves []models.Save
	if err := s.db.WithContext(ctx).Where("saver_id = ?", viewerID).Find(&saves).Error; err != nil {
		return nil, apperror.Internal("Failed to load saved questions", err)
	}
	savedAt := make(map[uint]time.Time, len(saves))
	for _, sv := range saves {
		savedAt[sv.QuestionID] = sv.CreatedAt
	}

	questions, err := s.filteredQuestions(ctx, q, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id IN (?)", s.db.Model(&models.Save{}).Select("question_id").Where("saver_id = ?", viewerID))
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, apperror.NotFound("No saved questions found")
	}

	items, err := s.questionItems(ctx, questions, viewerID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		at := savedAt[items[i].ID]
		items[i].SavedAt = &at
		items[i].IsSaved = true
	}
	SortQuestions(items, parseSort(q.SortBy, savedSortKeys, SortSavedDateDesc))

	page, overflow := Paginate(items, q.Page, q.Limit)
	if overflow {
		return nil, apperror.InvalidPage()
	}
	s.attachAskers(ctx, page.Items)
	s.metrics.RecordListing("saved", len(page.Items))
	return &page, nil
}

// Question returns one question with its description and engagement.
func (s *ListingService) Question(ctx context.Context, viewerID string, id uint) (*QuestionDetail, error) {
	var question models.Question
	if err := s.db.WithContext(ctx).Preload("Tags").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Question not found")
		}
		return nil, apperror.Internal("Failed to load question", err)
	}

	items, err := s.questionItems(ctx, []models.Question{question}, viewerID)
	if err != nil {
		return nil, err
	}
	s.attachAskers(ctx, items)
	return &QuestionDetail{QuestionListItem: items[0], Description: question.Description}, nil
}

// Answers lists the answers of one question. A page past the end is returned empty.
func (s *ListingService) Answers(ctx context.Context, viewerID string, q AnswerQuery) (*Page[AnswerItem], error) {
	if err := s.validatePage(q.PageQuery); err != nil {
		return nil, err
	}
	if err := s.requireExists(ctx, Target{Kind: TargetQuestion, ID: q.QuestionID}); err != nil {
		return nil, err
	}

	var answers []models.Answer
	if err := s.db.WithContext(ctx).Where("question_id = ?", q.QuestionID).Find(&answers).Error; err != nil {
		return nil, apperror.Internal("Failed to load answers", err)
	}

	ids := make([]uint, len(answers))
	for i, a := range answers {
		ids[i] = a.ID
	}

	var (
		engagement map[uint]Engagement
		comments   map[uint]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		engagement, err = s.counter.CountsFor(gctx, TargetAnswer, ids, viewerID)
		return err
	})
	g.Go(func() (err error) {
		comments, err = s.agg.AnswerCommentCounts(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal("Failed to aggregate answer metrics", err)
	}

	items := make([]AnswerItem, len(answers))
	for i, a := range answers {
		items[i] = AnswerItem{
			ID:            a.ID,
			QuestionID:    a.QuestionID,
			Content:       a.Content,
			AnswererID:    a.AnswererID,
			Engagement:    engagement[a.ID],
			CommentsCount: comments[a.ID],
			CreatedAt:     a.CreatedAt,
			UpdatedAt:     a.UpdatedAt,
		}
	}
	SortAnswers(items, parseSort(q.SortBy, answerSortKeys, SortDateDesc))

	page, _ := Paginate(items, q.Page, q.Limit)
	userIDs := make([]string, len(page.Items))
	for i := range page.Items {
		userIDs[i] = page.Items[i].AnswererID
	}
	profiles := s.resolveProfiles(ctx, userIDs)
	for i := range page.Items {
		page.Items[i].Answerer = profiles[page.Items[i].AnswererID]
	}
	s.metrics.RecordListing("answers", len(page.Items))
	return &page, nil
}

// Comments lists the comments on a question or an answer, oldest first.
func (s *ListingService) Comments(ctx context.Context, viewerID string, in TargetInput) ([]CommentItem, error) {
	parent, err := in.Resolve()
	if err != nil {
		return nil, err
	}
	if parent.Kind == TargetComment {
		return nil, apperror.BadRequest("Invalid target", "comments belong to a question or an answer")
	}
	if err := s.requireExists(ctx, parent); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where(parent.Kind.column()+" = ?", parent.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, apperror.Internal("Failed to load comments", err)
	}

	ids := make([]uint, len(comments))
	userIDs := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		userIDs[i] = c.CommenterID
	}
	engagement, err := s.counter.CountsFor(ctx, TargetComment, ids, viewerID)
	if err != nil {
		return nil, apperror.Internal("Failed to aggregate comment metrics", err)
	}
	profiles := s.resolveProfiles(ctx, userIDs)

	items := make([]CommentItem, len(comments))
	for i, c := range comments {
		items[i] = CommentItem{
			ID:          c.ID,
			QuestionID:  c.QuestionID,
			AnswerID:    c.AnswerID,
			Content:     c.Content,
			CommenterID: c.CommenterID,
			Commenter:   profiles[c.CommenterID],
			Engagement:  engagement[c.ID],
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		}
	}
	return items, nil
}

// LikeSummary returns the like summary of one target for the viewer.
func (s *ListingService) LikeSummary(ctx context.Context, viewerID string, in TargetInput) (Engagement, error) {
	target, err := in.Resolve()
	if err != nil {
		return Engagement{}, err
	}
	e, err := s.counter.Counts(ctx, target, viewerID)
	if err != nil {
		return Engagement{}, apperror.Internal("Failed to count likes", err)
	}
	return e, nil
}

// Subjects lists every known subject, including those without questions.
func (s *ListingService) Subjects(ctx context.Context, q PageQuery) (*Page[SubjectItem], error) {
	if err := s.validatePage(q); err != nil {
		return nil, err
	}

	counts, err := s.agg.SubjectMetrics(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to aggregate subjects", err)
	}

	items := make([]SubjectItem, 0, len(models.Subjects))
	for _, subject := range models.Subjects {
		items = append(items, SubjectItem{Subject: subject, GroupCounts: counts[string(subject)]})
	}
	if len(items) == 0 {
		return nil, apperror.NotFound("No subjects found")
	}

	SortGroups(items, parseSort(q.SortBy, groupSortKeys, SortQuestionsDesc), func(i SubjectItem) GroupCounts { return i.GroupCounts })
	page, overflow := Paginate(items, q.Page, q.Limit)
	if overflow {
		return nil, apperror.InvalidPage()
	}
	s.metrics.RecordListing("subjects", len(page.Items))
	return &page, nil
}

// Tags lists every tag in use, ranked like the other aggregate listings.
func (s *ListingService) Tags(ctx context.Context, q PageQuery) (*Page[TagItem], error) {
	if err := s.validatePage(q); err != nil {
		return nil, err
	}

	counts, err := s.agg.TagMetrics(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to aggregate tags", err)
	}
	if len(counts) == 0 {
		return nil, apperror.NotFound("No tags found")
	}

	items := make([]TagItem, 0, len(counts))
	for name, gc := range counts {
		items = append(items, TagItem{Name: name, GroupCounts: gc})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	SortGroups(items, parseSort(q.SortBy, groupSortKeys, SortQuestionsDesc), func(i TagItem) GroupCounts { return i.GroupCounts })
	page, overflow := Paginate(items, q.Page, q.Limit)
	if overflow {
		return nil, apperror.InvalidPage()
	}
	s.metrics.RecordListing("tags", len(page.Items))
	return &page, nil
}

// Users lists every user who has asked, answered or commented.
func (s *ListingService) Users(ctx context.Context, q PageQuery) (*Page[UserItem], error) {
	if err := s.validatePage(q); err != nil {
		return nil, err
	}

	counts, err := s.agg.UserMetrics(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to aggregate users", err)
	}
	if len(counts) == 0 {
		return nil, apperror.NotFound("No users found")
	}

	items := make([]UserItem, 0, len(counts))
	for id, gc := range counts {
		items = append(items, UserItem{UserID: id, GroupCounts: gc})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UserID < items[j].UserID })

	SortGroups(items, parseSort(q.SortBy, groupSortKeys, SortQuestionsDesc), func(i UserItem) GroupCounts { return i.GroupCounts })
	page, overflow := Paginate(items, q.Page, q.Limit)
	if overflow {
		return nil, apperror.InvalidPage()
	}

	ids := make([]string, len(page.Items))
	for i := range page.Items {
		ids[i] = page.Items[i].UserID
	}
	profiles := s.resolveProfiles(ctx, ids)
	for i := range page.Items {
		page.Items[i].User = profiles[page.Items[i].UserID]
	}
	s.metrics.RecordListing("users", len(page.Items))
	return &page, nil
}
