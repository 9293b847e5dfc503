package repositories

import (
	"context"
	"time"

	"github.com/podscout/podscout/internal/domain/entities"
)

// AnalysisRepository defines the interface for analysis data access
type AnalysisRepository interface {
	// Put persists an analysis exactly once per video. A second write
	// for the same video id fails with a DUPLICATE error and leaves the
	// first row untouched.
	Put(ctx context.Context, analysis *entities.Analysis) error

	// FindByVideoID finds an analysis by its video id
	FindByVideoID(ctx context.Context, videoID string) (*entities.Analysis, error)

	// InWindow returns analyses whose video was published in
	// [start, end] inclusive, newest first. Videos without a publish
	// date are excluded.
	InWindow(ctx context.Context, start, end time.Time) ([]*entities.Analysis, error)

	// ExistsForVideo reports whether the video already has an analysis
	ExistsForVideo(ctx context.Context, videoID string) (bool, error)
}
