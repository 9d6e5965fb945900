package services

import (
	"context"
	"upscoverflow/internal/apperror"
	"upscoverflow/internal/models"

	"gorm.io/gorm"
)

func modelFor(kind TargetKind) interface{} {
	switch kind {
	case TargetAnswer:
		return &models.Answer{}
	case TargetComment:
		return &models.Comment{}
	default:
		return &models.Question{}
	}
}

func notFound(kind TargetKind) *apperror.AppError {
	switch kind {
	case TargetAnswer:
		return apperror.NotFound("Answer not found")
	case TargetComment:
		return apperror.NotFound("Comment not found")
	default:
		return apperror.NotFound("Question not found")
	}
}

// targetExists reports whether the row referenced by t is present.
func targetExists(tx *gorm.DB, t Target) (bool, error) {
	var n int64
	if err := tx.Model(modelFor(t.Kind)).Where("id = ?", t.ID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *ListingService) requireExists(ctx context.Context, t Target) error {
	ok, err := targetExists(s.db.WithContext(ctx), t)
	if err != nil {
		return apperror.Internal("Failed to load "+string(t.Kind), err)
	}
	if !ok {
		return notFound(t.Kind)
	}
	return nil
}
