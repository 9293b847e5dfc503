package entities

import "time"

// Video represents one discovered content unit tracked through the
// pipeline. The YouTube video id doubles as the idempotency key: a feed
// re-delivering a known id updates title and publish time but never
// touches an already fetched transcript.
type Video struct {
	ID                  string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ChannelID           string     `json:"channel_id" gorm:"type:varchar(64);not null;index"`
	Title               string     `json:"title" gorm:"type:text;not null"`
	PublishedAt         *time.Time `json:"published_at,omitempty" gorm:"index"`
	Transcript          *string    `json:"transcript,omitempty" gorm:"type:text"`
	TranscriptFetchedAt *time.Time `json:"transcript_fetched_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// ChannelName is resolved from the profile config, not stored.
	ChannelName string `json:"channel_name,omitempty" gorm:"-"`
}

// TableName specifies the table name for Video
func (Video) TableName() string {
	return "videos"
}

// HasTranscript reports whether the transcription stage completed.
// Presence of the transcript is the sole completion marker.
func (v *Video) HasTranscript() bool {
	return v.Transcript != nil
}
