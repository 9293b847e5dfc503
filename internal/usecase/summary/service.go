package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/podscout/podscout/internal/domain/entities"
	repo "github.com/podscout/podscout/internal/domain/repositories"
	"github.com/podscout/podscout/internal/usecase/pipeline"
	"github.com/podscout/podscout/internal/usecase/schedule"
	"github.com/podscout/podscout/pkg/config"
)

// Mirror is the optional remote object store a finished summary is
// copied to. Mirroring happens after the local write and is best
// effort; its failures are logged, never returned.
type Mirror interface {
	UploadJSON(ctx context.Context, objectName string, v interface{}) error
	UploadMarkdown(ctx context.Context, objectName, content string) error
}

// Result is a finished aggregation run.
type Result struct {
	Text     string
	Window   schedule.Window
	VideoIDs []string
	Usage    pipeline.Usage
}

// Stats describes the analyses inside a window before synthesis.
type Stats struct {
	TotalVideos         int
	Channels            []string
	PlayerMentionCount  int
	RecommendationCount int
}

// payloadEntry is one analysis in the synthesis prompt payload.
type payloadEntry struct {
	Source          string                      `json:"source"`
	VideoTitle      string                      `json:"video_title"`
	Published       string                      `json:"published"`
	PlayerMentions  []entities.PlayerMention    `json:"player_mentions"`
	Recommendations []entities.Recommendation   `json:"recommendations"`
	InjuryNews      []entities.InjuryNote       `json:"injury_news"`
	Differentials   []entities.DifferentialPick `json:"differentials"`
	CaptainPicks    []entities.CaptainPick      `json:"captain_picks"`
}

// Service aggregates all analyses of a resolved window into a single
// period summary.
type Service struct {
	analyses  repo.AnalysisRepository
	summaries repo.SummaryRepository
	epochs    schedule.EpochSource
	llm       pipeline.Analyzer
	mirror    Mirror
	profile   *config.Profile
	cfg       *config.Config
	logger    *zap.Logger
}

// NewService constructs the aggregator service. epochs and mirror may
// be nil when the profile does not use them.
func NewService(
	analyses repo.AnalysisRepository,
	summaries repo.SummaryRepository,
	epochs schedule.EpochSource,
	llm pipeline.Analyzer,
	mirror Mirror,
	profile *config.Profile,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		analyses:  analyses,
		summaries: summaries,
		epochs:    epochs,
		llm:       llm,
		mirror:    mirror,
		profile:   profile,
		cfg:       cfg,
		logger:    logger,
	}
}

// Aggregate resolves the reporting window at now, synthesizes every
// analysis inside it into one narrative and stores it under the period
// label, replacing any earlier summary for the same label. An empty
// window returns (nil, nil) and writes nothing. periodOverride, when
// non-empty, replaces the resolved label.
func (s *Service) Aggregate(ctx context.Context, now time.Time, periodOverride string) (*Result, error) {
	if err := s.cfg.RequireAnthropic(); err != nil {
		return nil, err
	}

	window := schedule.Resolve(ctx, s.profile.Schedule, now, s.epochs)
	if window.Start == nil {
		s.logger.Warn("window start unresolved, using 7-day default",
			zap.String("schedule", s.profile.Schedule.Type))
	}
	if periodOverride != "" {
		window.Label = periodOverride
	}

	analyses, err := s.analyses.InWindow(ctx, window.FallbackStart(now), now)
	if err != nil {
		return nil, err
	}
	if len(analyses) == 0 {
		return nil, nil
	}

	prompt, videoIDs, err := s.renderSummaryPrompt(analyses, window.Label)
	if err != nil {
		return nil, err
	}

	completion, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	record := entities.NewPeriodSummary(window.Label, completion.Text, videoIDs)
	record.InputTokens = completion.InputTokens
	record.OutputTokens = completion.OutputTokens
	record.Cost = pipeline.CostOf(completion.InputTokens, completion.OutputTokens, s.profile.Pricing)
	record.ModelUsed = completion.Model

	if err := s.summaries.Replace(ctx, record); err != nil {
		return nil, err
	}

	s.mirrorSummary(ctx, window, record)

	result := &Result{
		Text:     completion.Text,
		Window:   window,
		VideoIDs: videoIDs,
	}
	result.Usage.Add(completion.InputTokens, completion.OutputTokens, s.profile.Pricing)
	return result, nil
}

// Stats reports what the current window would aggregate, without
// calling the model.
func (s *Service) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	window := schedule.Resolve(ctx, s.profile.Schedule, now, s.epochs)

	analyses, err := s.analyses.InWindow(ctx, window.FallbackStart(now), now)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalVideos: len(analyses)}
	seen := make(map[string]bool)
	for _, a := range analyses {
		name := s.profile.ChannelName(a.ChannelID)
		if !seen[name] {
			seen[name] = true
			stats.Channels = append(stats.Channels, name)
		}
		stats.PlayerMentionCount += len(a.PlayerMentions)
		stats.RecommendationCount += len(a.Recommendations)
	}
	return stats, nil
}

func (s *Service) renderSummaryPrompt(analyses []*entities.Analysis, period string) (string, []string, error) {
	entries := make([]payloadEntry, 0, len(analyses))
	videoIDs := make([]string, 0, len(analyses))
	channels := make(map[string]bool)

	for _, a := range analyses {
		name := s.profile.ChannelName(a.ChannelID)
		channels[name] = true
		published := ""
		if a.PublishedAt != nil {
			published = a.PublishedAt.UTC().Format(time.RFC3339)
		}
		entries = append(entries, payloadEntry{
			Source:          name,
			VideoTitle:      a.Title,
			Published:       published,
			PlayerMentions:  a.PlayerMentions,
			Recommendations: a.Recommendations,
			InjuryNews:      a.InjuryNews,
			Differentials:   a.Differentials,
			CaptainPicks:    a.CaptainPicks,
		})
		videoIDs = append(videoIDs, a.VideoID)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", nil, err
	}

	prompt := strings.NewReplacer(
		"{num_videos}", strconv.Itoa(len(entries)),
		"{num_channels}", strconv.Itoa(len(channels)),
		"{analysis_data}", string(data),
		"{period}", period,
	).Replace(s.profile.SummaryPrompt)

	return prompt, videoIDs, nil
}

// mirrorSummary copies the stored summary to the remote mirror. This
// is a post-commit side effect; errors are logged and swallowed.
func (s *Service) mirrorSummary(ctx context.Context, window schedule.Window, record *entities.PeriodSummary) {
	if s.mirror == nil || s.profile.RemoteSync == nil {
		return
	}

	prefix := s.profile.RemoteSync.PathPrefix
	key := window.Key()

	jsonName := fmt.Sprintf("%s/summaries/%s.json", prefix, key)
	if err := s.mirror.UploadJSON(ctx, jsonName, record); err != nil {
		s.logger.Warn("summary mirror upload failed",
			zap.String("object", jsonName),
			zap.Error(err))
	}

	mdName := fmt.Sprintf("%s/summaries/%s.md", prefix, key)
	md := fmt.Sprintf("# %s summary\n\n%s", record.PeriodLabel, record.SummaryText)
	if err := s.mirror.UploadMarkdown(ctx, mdName, md); err != nil {
		s.logger.Warn("summary mirror upload failed",
			zap.String("object", mdName),
			zap.Error(err))
	}
}
