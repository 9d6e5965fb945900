package services

import (
	"math"
	"sort"
	"time"
)

type SortKey string

const (
	SortDateDesc      SortKey = "date-desc"
	SortDateAsc       SortKey = "date-asc"
	SortVotesDesc     SortKey = "votes-desc"
	SortAnswersDesc   SortKey = "answers-desc"
	SortCommentsDesc  SortKey = "comments-desc"
	SortTagsDesc      SortKey = "tags-desc"
	SortSavedDateDesc SortKey = "saved-date-desc"
	SortSavedDateAsc  SortKey = "saved-date-asc"

	SortQuestionsDesc SortKey = "questions-desc"
)

var (
	questionSortKeys = []SortKey{SortDateDesc, SortDateAsc, SortVotesDesc, SortAnswersDesc, SortCommentsDesc, SortTagsDesc}
	savedSortKeys    = append([]SortKey{SortSavedDateDesc, SortSavedDateAsc}, questionSortKeys...)
	answerSortKeys   = []SortKey{SortDateDesc, SortDateAsc, SortVotesDesc, SortCommentsDesc}
	groupSortKeys    = []SortKey{SortQuestionsDesc, SortAnswersDesc, SortCommentsDesc, SortTagsDesc}
)

// parseSort returns raw when it is one of allowed, otherwise def.
func parseSort(raw string, allowed []SortKey, def SortKey) SortKey {
	for _, k := range allowed {
		if string(k) == raw {
			return k
		}
	}
	return def
}

// rankable is the view of a question or answer the comparators need.
type rankable struct {
	id        uint
	createdAt time.Time
	savedAt   time.Time
	votes     int64
	answers   int64
	comments  int64
	tags      int
}

// newerFirst is the tie-break shared by every entity sort key.
func newerFirst(a, b rankable) bool {
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return a.id > b.id
}

func entityLess(key SortKey) func(a, b rankable) bool {
	switch key {
	case SortDateAsc:
		return func(a, b rankable) bool {
			if !a.createdAt.Equal(b.createdAt) {
				return a.createdAt.Before(b.createdAt)
			}
			return a.id > b.id
		}
	case SortVotesDesc:
		return byInt(func(r rankable) int64 { return r.votes })
	case SortAnswersDesc:
		return byInt(func(r rankable) int64 { return r.answers })
	case SortCommentsDesc:
		return byInt(func(r rankable) int64 { return r.comments })
	case SortTagsDesc:
		return byInt(func(r rankable) int64 { return int64(r.tags) })
	case SortSavedDateDesc:
		return func(a, b rankable) bool {
			if !a.savedAt.Equal(b.savedAt) {
				return a.savedAt.After(b.savedAt)
			}
			return newerFirst(a, b)
		}
	case SortSavedDateAsc:
		return func(a, b rankable) bool {
			if !a.savedAt.Equal(b.savedAt) {
				return a.savedAt.Before(b.savedAt)
			}
			return newerFirst(a, b)
		}
	default:
		return newerFirst
	}
}

func byInt(metric func(rankable) int64) func(a, b rankable) bool {
	return func(a, b rankable) bool {
		if ma, mb := metric(a), metric(b); ma != mb {
			return ma > mb
		}
		return newerFirst(a, b)
	}
}

// sortEntities stable-sorts items by key using view to project each item.
func sortEntities[T any](items []T, key SortKey, view func(T) rankable) {
	less := entityLess(key)
	sort.SliceStable(items, func(i, j int) bool {
		return less(view(items[i]), view(items[j]))
	})
}

// SortQuestions orders questions in place.
func SortQuestions(items []QuestionListItem, key SortKey) {
	sortEntities(items, key, QuestionListItem.rankable)
}

func SortAnswers(items []AnswerItem, key SortKey) {
	sortEntities(items, key, AnswerItem.rankable)
}

// groupChain lists the metrics compared for a group sort key, primary first.
func groupChain(key SortKey) []func(GroupCounts) int64 {
	questions := func(g GroupCounts) int64 { return g.Questions }
	answers := func(g GroupCounts) int64 { return g.Answers }
	comments := func(g GroupCounts) int64 { return g.Comments }
	tags := func(g GroupCounts) int64 { return g.Tags }

	switch key {
	case SortAnswersDesc:
		return []func(GroupCounts) int64{answers, questions, comments, tags}
	case SortCommentsDesc:
		return []func(GroupCounts) int64{comments, questions, answers, tags}
	case SortTagsDesc:
		return []func(GroupCounts) int64{tags, questions, answers, comments}
	default:
		return []func(GroupCounts) int64{questions, answers, comments, tags}
	}
}

// SortGroups stable-sorts aggregate items. Items tied on every metric keep their
// input order.
func SortGroups[T any](items []T, key SortKey, counts func(T) GroupCounts) {
	chain := groupChain(key)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := counts(items[i]), counts(items[j])
		for _, metric := range chain {
			if ma, mb := metric(a), metric(b); ma != mb {
				return ma > mb
			}
		}
		return false
	})
}

// Page is one slice of a ranked listing.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"totalItems"`
	TotalPages int  `json:"totalPages"`
	IsNext     bool `json:"isNext"`
}

// Paginate slices items[(page-1)*limit : page*limit]. overflow reports a page past
// the last one; the returned page then has no items.
func Paginate[T any](items []T, page, limit int) (p Page[T], overflow bool) {
	total := len(items)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	p = Page[T]{
		Items:      []T{},
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
		IsNext:     page < totalPages,
	}

	start := (page - 1) * limit
	if start >= total {
		return p, page > 1 && page > totalPages
	}
	end := start + limit
	if end > total {
		end = total
	}
	p.Items = items[start:end]
	return p, false
}
