package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/podscout/podscout/errors"
	"github.com/podscout/podscout/internal/domain/entities"
	repo "github.com/podscout/podscout/internal/domain/repositories"
)

type summaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new period summary repository backed by GORM
func NewSummaryRepository(db *gorm.DB) repo.SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) Replace(ctx context.Context, summary *entities.PeriodSummary) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("period_label = ?", summary.PeriodLabel).
			Delete(&entities.PeriodSummary{}).Error; err != nil {
			return err
		}
		return tx.Create(summary).Error
	})
}

func (r *summaryRepository) GetByLabel(ctx context.Context, label string) (*entities.PeriodSummary, error) {
	var summary entities.PeriodSummary
	err := r.db.WithContext(ctx).First(&summary, "period_label = ?", label).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrSummaryNotFound(label)
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *summaryRepository) List(ctx context.Context, limit int) ([]*entities.PeriodSummary, error) {
	var summaries []*entities.PeriodSummary
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&summaries).Error
	return summaries, err
}
