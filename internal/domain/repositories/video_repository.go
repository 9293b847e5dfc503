package repositories

import (
	"context"

	"github.com/podscout/podscout/internal/domain/entities"
)

// VideoRepository defines the interface for video data access
type VideoRepository interface {
	// Upsert creates or merges a discovered video. Merging updates title
	// and published_at but preserves an existing transcript and its
	// fetch timestamp.
	Upsert(ctx context.Context, video *entities.Video) error

	// FindByID finds a video by ID
	FindByID(ctx context.Context, id string) (*entities.Video, error)

	// AttachTranscript sets the transcript and stamps
	// transcript_fetched_at. Fails with a NOT_FOUND error when the id
	// is unknown.
	AttachTranscript(ctx context.Context, id, transcript string) error

	// MissingTranscript returns videos with no transcript, ordered by
	// published_at descending (unknown publish dates last), insertion
	// order breaking ties.
	MissingTranscript(ctx context.Context) ([]*entities.Video, error)

	// MissingAnalysis returns videos that have a transcript but no
	// analysis row yet, same ordering as MissingTranscript.
	MissingAnalysis(ctx context.Context) ([]*entities.Video, error)

	// List returns the most recent videos up to limit together with
	// their analysis status.
	List(ctx context.Context, limit int) ([]*entities.Video, error)
}
