package repositories

import (
	"context"

	"github.com/podscout/podscout/internal/domain/entities"
)

// SummaryRepository defines the interface for period summary data access
type SummaryRepository interface {
	// Replace stores the summary for its period label, removing any
	// previous summary with the same label.
	Replace(ctx context.Context, summary *entities.PeriodSummary) error

	// GetByLabel finds a summary by period label
	GetByLabel(ctx context.Context, label string) (*entities.PeriodSummary, error)

	// List returns stored summaries, newest first
	List(ctx context.Context, limit int) ([]*entities.PeriodSummary, error)
}
