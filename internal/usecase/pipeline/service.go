package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/podscout/podscout/internal/domain/entities"
	repo "github.com/podscout/podscout/internal/domain/repositories"
	"github.com/podscout/podscout/internal/infrastructure/external/youtube"
	"github.com/podscout/podscout/pkg/ai"
	"github.com/podscout/podscout/pkg/config"
)

// Transcripts beyond this length are truncated before analysis to stay
// inside the model's context budget.
const maxTranscriptChars = 100000

// ChannelSource discovers new videos for a channel feed.
type ChannelSource interface {
	FetchEntries(ctx context.Context, feedURL string) ([]youtube.FeedEntry, error)
}

// TranscriptSource retrieves the transcript text for one video.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Analyzer produces one model completion for a prompt.
type Analyzer interface {
	Complete(ctx context.Context, prompt string) (*ai.Completion, error)
}

// Service drives videos through the discovered -> transcribed ->
// analyzed stages. Stage completion is marked by data presence only:
// a stored transcript, or an analysis row.
type Service struct {
	videos      repo.VideoRepository
	analyses    repo.AnalysisRepository
	channels    ChannelSource
	transcripts TranscriptSource
	llm         Analyzer
	parser      *Parser
	profile     *config.Profile
	cfg         *config.Config
	logger      *zap.Logger
}

// NewService constructs the pipeline service
func NewService(
	videos repo.VideoRepository,
	analyses repo.AnalysisRepository,
	channels ChannelSource,
	transcripts TranscriptSource,
	llm Analyzer,
	profile *config.Profile,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		videos:      videos,
		analyses:    analyses,
		channels:    channels,
		transcripts: transcripts,
		llm:         llm,
		parser:      NewParser(),
		profile:     profile,
		cfg:         cfg,
		logger:      logger,
	}
}

// FetchVideos polls every configured channel feed and upserts the
// discovered videos. A failing channel is logged and skipped; it never
// blocks the others. Returns the number of stored videos per channel
// name.
func (s *Service) FetchVideos(ctx context.Context, since *time.Time) (map[string]int, error) {
	results := make(map[string]int, len(s.profile.Channels))

	for _, ch := range s.profile.Channels {
		entries, err := s.channels.FetchEntries(ctx, ch.FeedURL())
		if err != nil {
			s.logger.Warn("channel fetch failed",
				zap.String("channel", ch.ID),
				zap.Error(err))
			results[ch.Name] = 0
			continue
		}

		count := 0
		for _, entry := range entries {
			if since != nil {
				if entry.PublishedAt == nil || entry.PublishedAt.Before(*since) {
					continue
				}
			}
			video := &entities.Video{
				ID:          entry.VideoID,
				ChannelID:   ch.ID,
				Title:       entry.Title,
				PublishedAt: entry.PublishedAt,
			}
			if err := s.videos.Upsert(ctx, video); err != nil {
				return results, err
			}
			count++
		}
		results[ch.Name] = count
	}

	return results, nil
}

// Transcribe fetches transcripts for every video that has none. Items
// are processed independently; a failed fetch is recorded and the item
// stays eligible for the next run.
func (s *Service) Transcribe(ctx context.Context) (*StageResult, error) {
	videos, err := s.videos.MissingTranscript(ctx)
	if err != nil {
		return nil, err
	}

	result := &StageResult{}
	for _, video := range videos {
		transcript, err := s.transcripts.Fetch(ctx, video.ID)
		if err != nil {
			s.logger.Warn("transcript fetch failed",
				zap.String("video_id", video.ID),
				zap.Error(err))
			result.Failed = append(result.Failed, Failure{VideoID: video.ID, Reason: err.Error()})
			continue
		}

		if err := s.videos.AttachTranscript(ctx, video.ID, transcript); err != nil {
			return result, err
		}
		result.Succeeded = append(result.Succeeded, video.ID)
	}

	s.logger.Info("transcribe stage finished",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// Analyze runs the model analysis for every transcribed video without
// an analysis row. The API key is a hard precondition checked before
// any work; per-item model failures are recorded, never fatal.
func (s *Service) Analyze(ctx context.Context) (*StageResult, error) {
	if err := s.cfg.RequireAnthropic(); err != nil {
		return nil, err
	}

	videos, err := s.videos.MissingAnalysis(ctx)
	if err != nil {
		return nil, err
	}

	result := &StageResult{}
	for _, video := range videos {
		completion, err := s.llm.Complete(ctx, s.renderAnalysisPrompt(video))
		if err != nil {
			s.logger.Warn("analysis call failed",
				zap.String("video_id", video.ID),
				zap.Error(err))
			result.Failed = append(result.Failed, Failure{VideoID: video.ID, Reason: err.Error()})
			continue
		}
		result.Usage.Add(completion.InputTokens, completion.OutputTokens, s.profile.Pricing)

		parsed, err := s.parser.ParseAnalysisResponse(completion.Text)
		if err != nil {
			s.logger.Warn("analysis response malformed",
				zap.String("video_id", video.ID),
				zap.Error(err))
			result.Failed = append(result.Failed, Failure{VideoID: video.ID, Reason: err.Error()})
			continue
		}

		// A duplicate here means the stage selection is broken;
		// propagate instead of silently overwriting.
		if err := s.analyses.Put(ctx, entities.NewAnalysis(video.ID, parsed, completion.Text)); err != nil {
			return result, err
		}
		result.Succeeded = append(result.Succeeded, video.ID)
	}

	s.logger.Info("analyze stage finished",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("input_tokens", result.Usage.InputTokens),
		zap.Int("output_tokens", result.Usage.OutputTokens),
		zap.Float64("cost", result.Usage.Cost))
	return result, nil
}

func (s *Service) renderAnalysisPrompt(video *entities.Video) string {
	transcript := ""
	if video.Transcript != nil {
		transcript = *video.Transcript
	}
	if len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars] + "... [truncated]"
	}

	return strings.NewReplacer(
		"{title}", video.Title,
		"{channel}", s.profile.ChannelName(video.ChannelID),
		"{transcript}", transcript,
	).Replace(s.profile.AnalysisPrompt)
}
