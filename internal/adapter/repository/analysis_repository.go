package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/podscout/podscout/errors"
	"github.com/podscout/podscout/internal/domain/entities"
	repo "github.com/podscout/podscout/internal/domain/repositories"
)

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository backed by GORM
func NewAnalysisRepository(db *gorm.DB) repo.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Put(ctx context.Context, analysis *entities.Analysis) error {
	// Check-then-create is safe under the store's single-writer
	// contract; the primary key constraint backs it up.
	exists, err := r.ExistsForVideo(ctx, analysis.VideoID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrAnalysisExists(analysis.VideoID)
	}
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAnalysisExists(analysis.VideoID)
		}
		return err
	}
	return nil
}

func (r *analysisRepository) FindByVideoID(ctx context.Context, videoID string) (*entities.Analysis, error) {
	var analysis entities.Analysis
	err := r.db.WithContext(ctx).First(&analysis, "video_id = ?", videoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) InWindow(ctx context.Context, start, end time.Time) ([]*entities.Analysis, error) {
	var out []*entities.Analysis
	err := r.db.WithContext(ctx).
		Joins("JOIN videos ON videos.id = analyses.video_id").
		Where("videos.published_at IS NOT NULL AND videos.published_at >= ? AND videos.published_at <= ?", start, end).
		Order("videos.published_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}

	// The video columns are not mapped on Analysis, so resolve the
	// joined fields with keyed lookups.
	for _, a := range out {
		var v entities.Video
		if err := r.db.WithContext(ctx).First(&v, "id = ?", a.VideoID).Error; err != nil {
			return nil, err
		}
		a.Title = v.Title
		a.ChannelID = v.ChannelID
		a.PublishedAt = v.PublishedAt
	}
	return out, nil
}

func (r *analysisRepository) ExistsForVideo(ctx context.Context, videoID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Analysis{}).
		Where("video_id = ?", videoID).
		Count(&count).Error
	return count > 0, err
}
