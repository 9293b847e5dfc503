package entities

import "time"

// PlayerMention is one player discussed in a transcript.
type PlayerMention struct {
	Player    string `json:"player"`
	Team      string `json:"team"`
	Context   string `json:"context"`
	Sentiment string `json:"sentiment"` // positive, negative, neutral
}

// Recommendation is a buy/sell/hold/avoid call for a player.
type Recommendation struct {
	Player string `json:"player"`
	Team   string `json:"team"`
	Action string `json:"action"` // buy, sell, hold, avoid
	Reason string `json:"reason"`
}

// InjuryNote is an injury update or fitness concern.
type InjuryNote struct {
	Player  string `json:"player"`
	Team    string `json:"team"`
	Status  string `json:"status"` // injured, doubtful, returning, fit
	Details string `json:"details"`
}

// DifferentialPick is an under-the-radar player suggestion.
type DifferentialPick struct {
	Player string `json:"player"`
	Team   string `json:"team"`
	Reason string `json:"reason"`
}

// CaptainPick is a captaincy recommendation.
type CaptainPick struct {
	Player string `json:"player"`
	Team   string `json:"team"`
	Reason string `json:"reason"`
}

// AnalysisResult is the structured payload the model returns for one
// transcript. Empty slices are valid; they mean the category had no
// mentions, which is distinct from "not yet analyzed".
type AnalysisResult struct {
	PlayerMentions  []PlayerMention    `json:"player_mentions"`
	Recommendations []Recommendation   `json:"recommendations"`
	InjuryNews      []InjuryNote       `json:"injury_news"`
	Differentials   []DifferentialPick `json:"differentials"`
	CaptainPicks    []CaptainPick      `json:"captain_picks"`
}

// Analysis is the persisted extraction for one video. Its existence is
// the analysis-stage completion marker; rows are written once and never
// updated.
type Analysis struct {
	VideoID         string             `json:"video_id" gorm:"primaryKey;type:varchar(64)"`
	AnalyzedAt      time.Time          `json:"analyzed_at" gorm:"not null"`
	PlayerMentions  []PlayerMention    `json:"player_mentions" gorm:"type:text;serializer:json"`
	Recommendations []Recommendation   `json:"recommendations" gorm:"type:text;serializer:json"`
	InjuryNews      []InjuryNote       `json:"injury_news" gorm:"type:text;serializer:json"`
	Differentials   []DifferentialPick `json:"differentials" gorm:"type:text;serializer:json"`
	CaptainPicks    []CaptainPick      `json:"captain_picks" gorm:"type:text;serializer:json"`
	RawOutput       string             `json:"raw_output" gorm:"type:text"`
	CreatedAt       time.Time          `json:"created_at" gorm:"autoCreateTime"`

	// Joined video fields used by the aggregator, not stored here.
	Title       string     `json:"title,omitempty" gorm:"-"`
	ChannelID   string     `json:"channel_id,omitempty" gorm:"-"`
	ChannelName string     `json:"channel_name,omitempty" gorm:"-"`
	PublishedAt *time.Time `json:"published_at,omitempty" gorm:"-"`
}

// TableName specifies the table name for Analysis
func (Analysis) TableName() string {
	return "analyses"
}

// NewAnalysis builds an Analysis from a parsed model result.
func NewAnalysis(videoID string, result *AnalysisResult, rawOutput string) *Analysis {
	return &Analysis{
		VideoID:         videoID,
		AnalyzedAt:      time.Now().UTC(),
		PlayerMentions:  result.PlayerMentions,
		Recommendations: result.Recommendations,
		InjuryNews:      result.InjuryNews,
		Differentials:   result.Differentials,
		CaptainPicks:    result.CaptainPicks,
		RawOutput:       rawOutput,
	}
}
