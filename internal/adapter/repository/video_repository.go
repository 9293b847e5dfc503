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

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository backed by GORM
func NewVideoRepository(db *gorm.DB) repo.VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Upsert(ctx context.Context, video *entities.Video) error {
	var existing entities.Video
	err := r.db.WithContext(ctx).First(&existing, "id = ?", video.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(video).Error
	}
	if err != nil {
		return err
	}

	// Merge: transcript and its fetch timestamp survive re-discovery.
	updates := map[string]interface{}{
		"channel_id":   video.ChannelID,
		"title":        video.Title,
		"published_at": video.PublishedAt,
	}
	return r.db.WithContext(ctx).Model(&entities.Video{}).
		Where("id = ?", video.ID).
		Updates(updates).Error
}

func (r *videoRepository) FindByID(ctx context.Context, id string) (*entities.Video, error) {
	var video entities.Video
	err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrVideoNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) AttachTranscript(ctx context.Context, id, transcript string) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&entities.Video{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transcript":            transcript,
			"transcript_fetched_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrVideoNotFound(id)
	}
	return nil
}

func (r *videoRepository) MissingTranscript(ctx context.Context) ([]*entities.Video, error) {
	var videos []*entities.Video
	err := r.db.WithContext(ctx).
		Where("transcript IS NULL").
		Order("published_at DESC").
		Order("created_at ASC").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) MissingAnalysis(ctx context.Context) ([]*entities.Video, error) {
	var videos []*entities.Video
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN analyses ON analyses.video_id = videos.id").
		Where("videos.transcript IS NOT NULL AND analyses.video_id IS NULL").
		Order("videos.published_at DESC").
		Order("videos.created_at ASC").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) List(ctx context.Context, limit int) ([]*entities.Video, error) {
	var videos []*entities.Video
	err := r.db.WithContext(ctx).
		Order("published_at DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&videos).Error
	return videos, err
}
