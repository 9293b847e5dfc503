package entities

import (
	"time"

	"github.com/google/uuid"
)

// PeriodSummary is the synthesized narrative for one reporting window.
// Re-running a period replaces the previous summary with the same label.
type PeriodSummary struct {
	ID           uuid.UUID `json:"id" gorm:"type:varchar(36);primaryKey"`
	PeriodLabel  string    `json:"period_label" gorm:"type:varchar(64);not null;uniqueIndex"`
	SummaryText  string    `json:"summary_text" gorm:"type:text;not null"`
	VideoIDs     []string  `json:"video_ids" gorm:"type:text;serializer:json"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost"`
	ModelUsed    string    `json:"model_used,omitempty" gorm:"type:varchar(64)"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for PeriodSummary
func (PeriodSummary) TableName() string {
	return "period_summaries"
}

// NewPeriodSummary creates a new PeriodSummary entity
func NewPeriodSummary(label, text string, videoIDs []string) *PeriodSummary {
	return &PeriodSummary{
		ID:          uuid.New(),
		PeriodLabel: label,
		SummaryText: text,
		VideoIDs:    videoIDs,
	}
}
