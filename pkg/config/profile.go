package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "github.com/podscout/podscout/errors"
)

// Schedule policy types.
const (
	ScheduleRollingDays   = "rolling_days"
	ScheduleCalendarDay   = "calendar_day"
	ScheduleCalendarWeek  = "calendar_week"
	ScheduleExternalEpoch = "external_epoch"
)

// YouTube RSS feed URL template
const youtubeRSSTemplate = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// File is the top-level profile configuration file.
type File struct {
	DefaultProfile string              `yaml:"default_profile" validate:"required"`
	DataDir        string              `yaml:"data_dir"`
	Profiles       map[string]*Profile `yaml:"profiles" validate:"required,min=1,dive"`
}

// Profile configures one content domain: its channels, prompts,
// schedule policy, pricing and optional remote mirror.
type Profile struct {
	Name           string            `yaml:"-"`
	Channels       []Channel         `yaml:"channels" validate:"required,min=1,dive"`
	AnalysisPrompt string            `yaml:"analysis_prompt" validate:"required"`
	SummaryPrompt  string            `yaml:"summary_prompt" validate:"required"`
	Schedule       ScheduleConfig    `yaml:"schedule"`
	Pricing        PricingConfig     `yaml:"pricing"`
	RemoteSync     *RemoteSyncConfig `yaml:"remote_sync"`
}

// Channel identifies one content source.
type Channel struct {
	ID              string `yaml:"id" validate:"required"`
	Name            string `yaml:"name" validate:"required"`
	SourceChannelID string `yaml:"source_channel_id" validate:"required"`
}

// ScheduleConfig selects the reporting window policy.
type ScheduleConfig struct {
	Type     string `yaml:"type"`
	Days     int    `yaml:"days"`
	StartDay string `yaml:"start_day"`
}

// PricingConfig holds model token prices per million tokens.
type PricingConfig struct {
	InputPerMTok  float64 `yaml:"input_per_mtok"`
	OutputPerMTok float64 `yaml:"output_per_mtok"`
}

// RemoteSyncConfig points at the optional object storage mirror.
type RemoteSyncConfig struct {
	Bucket     string `yaml:"bucket" validate:"required"`
	PathPrefix string `yaml:"path_prefix"`
}

// LoadProfiles reads and validates the profile configuration file.
func LoadProfiles(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrConfiguration(fmt.Sprintf("cannot read config file %s", path))
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.ErrConfiguration(fmt.Sprintf("invalid config file: %v", err))
	}

	if err := validator.New().Struct(&f); err != nil {
		return nil, apperrors.ErrConfiguration(fmt.Sprintf("invalid config: %v", err))
	}

	if f.DataDir == "" {
		f.DataDir = "data"
	}
	for name, p := range f.Profiles {
		p.Name = name
		if p.Schedule.Type == "" {
			p.Schedule.Type = ScheduleRollingDays
		}
		if p.Schedule.Days == 0 {
			p.Schedule.Days = 7
		}
		if p.Pricing.InputPerMTok == 0 {
			p.Pricing.InputPerMTok = 0.80
		}
		if p.Pricing.OutputPerMTok == 0 {
			p.Pricing.OutputPerMTok = 4.0
		}
		if p.RemoteSync != nil && p.RemoteSync.PathPrefix == "" {
			p.RemoteSync.PathPrefix = "podscout"
		}
	}

	if _, ok := f.Profiles[f.DefaultProfile]; !ok {
		return nil, apperrors.ErrUnknownProfile(f.DefaultProfile)
	}

	return &f, nil
}

// Profile returns the named profile, or the default one for an empty
// name.
func (f *File) Profile(name string) (*Profile, error) {
	if name == "" {
		name = f.DefaultProfile
	}
	p, ok := f.Profiles[name]
	if !ok {
		return nil, apperrors.ErrUnknownProfile(name)
	}
	return p, nil
}

// DBPath returns the per-profile database location. Profiles never
// share a store.
func (f *File) DBPath(profile string) string {
	return filepath.Join(f.DataDir, profile, "podscout.db")
}

// FeedURL returns the RSS feed URL for a channel.
func (c Channel) FeedURL() string {
	return fmt.Sprintf(youtubeRSSTemplate, c.SourceChannelID)
}

// ChannelName resolves a channel id to its display name.
func (p *Profile) ChannelName(channelID string) string {
	for _, ch := range p.Channels {
		if ch.ID == channelID {
			return ch.Name
		}
	}
	return "Unknown"
}
