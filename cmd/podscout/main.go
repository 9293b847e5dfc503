package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/podscout/podscout/internal/adapter/repository"
	repo "github.com/podscout/podscout/internal/domain/repositories"
	"github.com/podscout/podscout/internal/infrastructure/external/fpl"
	"github.com/podscout/podscout/internal/infrastructure/external/youtube"
	"github.com/podscout/podscout/internal/infrastructure/storage"
	"github.com/podscout/podscout/internal/usecase/pipeline"
	"github.com/podscout/podscout/internal/usecase/schedule"
	"github.com/podscout/podscout/internal/usecase/summary"
	"github.com/podscout/podscout/pkg/ai"
	"github.com/podscout/podscout/pkg/config"
)

type app struct {
	cfg      *config.Config
	file     *config.File
	profile  *config.Profile
	db       *repository.Database
	videos   repo.VideoRepository
	analyses repo.AnalysisRepository
	pipeline *pipeline.Service
	summary  *summary.Service
	logger   *zap.Logger
}

var (
	cfgFile     string
	profileName string
	a           = &app{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "podscout",
		Short:         "podscout - fetch, analyze and summarize fantasy football podcasts",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db != nil {
				a.db.Close()
			}
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "profile configuration file")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to operate on (default from config)")

	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(transcribeCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(listItemsCmd())
	rootCmd.AddCommand(profilesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) init() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	a.logger = logger

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	file, err := config.LoadProfiles(cfgFile)
	if err != nil {
		return err
	}
	a.file = file

	profile, err := file.Profile(profileName)
	if err != nil {
		return err
	}
	a.profile = profile

	db, err := repository.NewDatabase(file.DBPath(profile.Name))
	if err != nil {
		return err
	}
	a.db = db
	a.videos = repository.NewVideoRepository(db.DB)
	a.analyses = repository.NewAnalysisRepository(db.DB)
	summaries := repository.NewSummaryRepository(db.DB)

	llm := ai.NewAnthropicClient(&cfg.Anthropic)
	a.pipeline = pipeline.NewService(
		a.videos,
		a.analyses,
		youtube.NewChannelPoller(),
		youtube.NewTranscriptFetcher("en"),
		llm,
		profile,
		cfg,
		logger,
	)
	a.summary = summary.NewService(
		a.analyses,
		summaries,
		a.epochSource(),
		llm,
		a.mirror(),
		profile,
		cfg,
		logger,
	)
	return nil
}

// epochSource returns the gameweek collaborator for external_epoch
// schedules, nil otherwise.
func (a *app) epochSource() schedule.EpochSource {
	if a.profile.Schedule.Type == config.ScheduleExternalEpoch {
		return fpl.NewClient()
	}
	return nil
}

// mirror returns the optional remote store. Mirroring is best effort:
// a misconfigured or unreachable store only logs a warning.
func (a *app) mirror() summary.Mirror {
	if a.profile.RemoteSync == nil || !a.cfg.RemoteSyncConfigured() {
		return nil
	}
	client, err := storage.NewMinIOClient(&a.cfg.Storage, a.profile.RemoteSync.Bucket)
	if err != nil {
		a.logger.Warn("remote mirror unavailable", zap.Error(err))
		return nil
	}
	return client
}

func fetchCmd() *cobra.Command {
	var since string
	var useSchedule bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch latest videos from all channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var filter *time.Time
			switch {
			case since != "":
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date %q: %w", since, err)
				}
				filter = &t
			case useSchedule:
				w := schedule.Resolve(ctx, a.profile.Schedule, time.Now().UTC(), a.epochSource())
				if w.Start != nil {
					filter = w.Start
					fmt.Printf("Filtering videos since %s start: %s UTC\n", w.Label, w.Start.Format("2006-01-02 15:04"))
				} else {
					fmt.Println("Could not resolve schedule window, fetching all feed entries.")
				}
			}

			results, err := a.pipeline.FetchVideos(ctx, filter)
			if err != nil {
				return err
			}

			total := 0
			for name, count := range results {
				fmt.Printf("%-28s %d\n", name, count)
				total += count
			}
			fmt.Printf("%-28s %d\n", "Total", total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&since, "since", "s", "", "only store videos published after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&useSchedule, "schedule", false, "only store videos inside the profile's schedule window")
	return cmd
}

func transcribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe",
		Short: "Download transcripts for videos that don't have them",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.pipeline.Transcribe(cmd.Context())
			if err != nil {
				return err
			}
			printStageResult("transcribed", result, false)
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Analyze transcripts that haven't been analyzed yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.pipeline.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			printStageResult("analyzed", result, true)
			return nil
		},
	}
}

func summarizeCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Generate the period summary from analyses in the current window",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.summary.Aggregate(cmd.Context(), time.Now().UTC(), period)
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("no analyzed videos in the current window; run fetch, transcribe and analyze first")
			}

			fmt.Printf("== %s summary (%d videos) ==\n\n", result.Window.Label, len(result.VideoIDs))
			fmt.Println(result.Text)
			fmt.Printf("\nTokens: %d in / %d out, cost $%.4f\n",
				result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.Cost)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "override the period label")
	return cmd
}

func runCmd() *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: fetch, transcribe, analyze, summarize",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := time.Now().UTC()

			// Analyze and summarize both need the API key; fail before
			// touching the store.
			if err := a.cfg.RequireAnthropic(); err != nil {
				return err
			}

			var filter *time.Time
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date %q: %w", since, err)
				}
				filter = &t
			} else {
				w := schedule.Resolve(ctx, a.profile.Schedule, now, a.epochSource())
				if w.Start != nil {
					filter = w.Start
				}
			}

			fmt.Println("Step 1/4: fetching videos...")
			fetched, err := a.pipeline.FetchVideos(ctx, filter)
			if err != nil {
				return err
			}
			total := 0
			for _, n := range fetched {
				total += n
			}
			fmt.Printf("Fetched %d videos from %d channels.\n", total, len(fetched))

			fmt.Println("Step 2/4: downloading transcripts...")
			tr, err := a.pipeline.Transcribe(ctx)
			if err != nil {
				return err
			}
			printStageResult("transcribed", tr, false)

			fmt.Println("Step 3/4: analyzing transcripts...")
			an, err := a.pipeline.Analyze(ctx)
			if err != nil {
				return err
			}
			printStageResult("analyzed", an, true)

			fmt.Println("Step 4/4: generating summary...")
			result, err := a.summary.Aggregate(ctx, now, "")
			if err != nil {
				return err
			}
			if result == nil {
				fmt.Println("No analyzed videos in the current window; skipping summary.")
				return nil
			}
			fmt.Printf("== %s summary ==\n\n%s\n", result.Window.Label, result.Text)

			a.mirrorDatabase(cmd)
			return nil
		},
	}

	cmd.Flags().StringVarP(&since, "since", "s", "", "only store videos published after this date (YYYY-MM-DD)")
	return cmd
}

// mirrorDatabase copies the profile database to the remote store after
// a full run. Best effort only.
func (a *app) mirrorDatabase(cmd *cobra.Command) {
	if a.profile.RemoteSync == nil || !a.cfg.RemoteSyncConfigured() {
		return
	}
	client, err := storage.NewMinIOClient(&a.cfg.Storage, a.profile.RemoteSync.Bucket)
	if err != nil {
		a.logger.Warn("database mirror unavailable", zap.Error(err))
		return
	}
	object := fmt.Sprintf("%s/data/%s/podscout.db", a.profile.RemoteSync.PathPrefix, a.profile.Name)
	if err := client.UploadFilePath(cmd.Context(), object, a.file.DBPath(a.profile.Name)); err != nil {
		a.logger.Warn("database mirror upload failed", zap.Error(err))
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show what the current window would summarize, without calling the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.summary.Stats(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Printf("Videos in window:  %d\n", stats.TotalVideos)
			fmt.Printf("Channels:          %s\n", strings.Join(stats.Channels, ", "))
			fmt.Printf("Player mentions:   %d\n", stats.PlayerMentionCount)
			fmt.Printf("Recommendations:   %d\n", stats.RecommendationCount)
			return nil
		},
	}
}

func listItemsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list-items",
		Short: "List recent videos and their processing state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			videos, err := a.videos.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(videos) == 0 {
				fmt.Println("No videos stored yet. Run 'podscout fetch' first.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCHANNEL\tTITLE\tPUBLISHED\tTRANSCRIPT\tANALYZED")
			for _, v := range videos {
				published := "unknown"
				if v.PublishedAt != nil {
					published = v.PublishedAt.Format("2006-01-02")
				}
				analyzed, err := a.analyses.ExistsForVideo(ctx, v.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					v.ID,
					a.profile.ChannelName(v.ChannelID),
					truncate(v.Title, 50),
					published,
					yesNo(v.HasTranscript()),
					yesNo(analyzed))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of videos to show")
	return cmd
}

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configured profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROFILE\tCHANNELS\tSCHEDULE\tREMOTE SYNC")
			for name, p := range a.file.Profiles {
				remote := "-"
				if p.RemoteSync != nil {
					remote = p.RemoteSync.Bucket
				}
				marker := ""
				if name == a.file.DefaultProfile {
					marker = " (default)"
				}
				fmt.Fprintf(w, "%s%s\t%d\t%s\t%s\n", name, marker, len(p.Channels), p.Schedule.Type, remote)
			}
			return w.Flush()
		},
	}
}

func printStageResult(verb string, result *pipeline.StageResult, withUsage bool) {
	fmt.Printf("Successfully %s: %d\n", verb, len(result.Succeeded))
	if len(result.Failed) > 0 {
		fmt.Printf("Failed: %d\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("  - %s: %s\n", f.VideoID, f.Reason)
		}
	}
	if withUsage && (result.Usage.InputTokens > 0 || result.Usage.OutputTokens > 0) {
		fmt.Printf("Tokens: %d in / %d out, cost $%.4f\n",
			result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.Cost)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
