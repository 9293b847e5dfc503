package repository

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/podscout/podscout/errors"
	"github.com/podscout/podscout/internal/domain/entities"
	"github.com/podscout/podscout/internal/testutil"
)

func ts(day, hour int) *time.Time {
	t := time.Date(2025, 2, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestVideoUpsertPreservesTranscript(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	video := &entities.Video{ID: "vid1", ChannelID: "ch1", Title: "GW25 preview", PublishedAt: ts(14, 10)}
	if err := repo.Upsert(ctx, video); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.AttachTranscript(ctx, "vid1", "transcript text"); err != nil {
		t.Fatalf("AttachTranscript: %v", err)
	}

	// Re-discovery with updated metadata keeps the transcript.
	again := &entities.Video{ID: "vid1", ChannelID: "ch1", Title: "GW25 preview (updated)", PublishedAt: ts(14, 12)}
	if err := repo.Upsert(ctx, again); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	stored, err := repo.FindByID(ctx, "vid1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Title != "GW25 preview (updated)" {
		t.Errorf("title = %q", stored.Title)
	}
	if !stored.HasTranscript() || *stored.Transcript != "transcript text" {
		t.Error("transcript lost on re-upsert")
	}
	if stored.TranscriptFetchedAt == nil {
		t.Error("transcript fetch time lost on re-upsert")
	}

	var count int64
	db.Model(&entities.Video{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestAttachTranscriptUnknownVideo(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewVideoRepository(db)

	err := repo.AttachTranscript(context.Background(), "nope", "text")
	if !apperrors.IsCode(err, apperrors.ErrorCode_NOT_FOUND) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestMissingTranscriptOrdering(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	text := "done"
	for _, v := range []*entities.Video{
		{ID: "older", ChannelID: "ch1", Title: "older", PublishedAt: ts(10, 0)},
		{ID: "newer", ChannelID: "ch1", Title: "newer", PublishedAt: ts(14, 0)},
		{ID: "undated", ChannelID: "ch1", Title: "undated"},
		{ID: "has", ChannelID: "ch1", Title: "has", PublishedAt: ts(15, 0), Transcript: &text},
	} {
		if err := repo.Upsert(ctx, v); err != nil {
			t.Fatal(err)
		}
	}

	missing, err := repo.MissingTranscript(ctx)
	if err != nil {
		t.Fatalf("MissingTranscript: %v", err)
	}
	if len(missing) != 3 {
		t.Fatalf("expected 3 missing, got %d", len(missing))
	}
	if missing[0].ID != "newer" || missing[1].ID != "older" {
		t.Errorf("order = %s, %s", missing[0].ID, missing[1].ID)
	}
}

func TestMissingAnalysisSelection(t *testing.T) {
	db := testutil.OpenTestDB(t)
	videos := NewVideoRepository(db)
	analyses := NewAnalysisRepository(db)
	ctx := context.Background()

	text := "transcript"
	for _, v := range []*entities.Video{
		{ID: "ready", ChannelID: "ch1", Title: "ready", PublishedAt: ts(14, 0), Transcript: &text},
		{ID: "done", ChannelID: "ch1", Title: "done", PublishedAt: ts(13, 0), Transcript: &text},
		{ID: "raw", ChannelID: "ch1", Title: "raw", PublishedAt: ts(12, 0)},
	} {
		if err := videos.Upsert(ctx, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := analyses.Put(ctx, entities.NewAnalysis("done", &entities.AnalysisResult{}, "{}")); err != nil {
		t.Fatal(err)
	}

	pending, err := videos.MissingAnalysis(ctx)
	if err != nil {
		t.Fatalf("MissingAnalysis: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "ready" {
		t.Errorf("pending = %v", pending)
	}
}

func TestAnalysisPutWriteOnce(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	first := entities.NewAnalysis("vid1", &entities.AnalysisResult{
		PlayerMentions: []entities.PlayerMention{{Player: "Saka", Context: "returning", Sentiment: "positive"}},
	}, "raw-first")
	if err := repo.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second := entities.NewAnalysis("vid1", &entities.AnalysisResult{}, "raw-second")
	err := repo.Put(ctx, second)
	if !apperrors.IsCode(err, apperrors.ErrorCode_DUPLICATE) {
		t.Fatalf("expected DUPLICATE, got %v", err)
	}

	stored, err := repo.FindByVideoID(ctx, "vid1")
	if err != nil {
		t.Fatalf("FindByVideoID: %v", err)
	}
	if stored.RawOutput != "raw-first" {
		t.Errorf("first write not retained: %q", stored.RawOutput)
	}
	if len(stored.PlayerMentions) != 1 {
		t.Errorf("mentions = %+v", stored.PlayerMentions)
	}
}

func TestFindByVideoIDMissing(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAnalysisRepository(db)

	analysis, err := repo.FindByVideoID(context.Background(), "nope")
	if err != nil || analysis != nil {
		t.Errorf("expected nil, nil; got %v, %v", analysis, err)
	}
}

func TestInWindowBounds(t *testing.T) {
	db := testutil.OpenTestDB(t)
	videos := NewVideoRepository(db)
	analyses := NewAnalysisRepository(db)
	ctx := context.Background()

	text := "t"
	cases := []struct {
		id        string
		published *time.Time
	}{
		{"inside", ts(14, 12)},
		{"at-start", ts(10, 0)},
		{"before", ts(9, 23)},
		{"undated", nil},
	}
	for _, c := range cases {
		if err := videos.Upsert(ctx, &entities.Video{ID: c.id, ChannelID: "ch1", Title: c.id, PublishedAt: c.published, Transcript: &text}); err != nil {
			t.Fatal(err)
		}
		if err := analyses.Put(ctx, entities.NewAnalysis(c.id, &entities.AnalysisResult{}, "{}")); err != nil {
			t.Fatal(err)
		}
	}

	got, err := analyses.InWindow(ctx, *ts(10, 0), *ts(15, 0))
	if err != nil {
		t.Fatalf("InWindow: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(got))
	}
	if got[0].VideoID != "inside" || got[1].VideoID != "at-start" {
		t.Errorf("order = %s, %s", got[0].VideoID, got[1].VideoID)
	}
	if got[0].Title != "inside" || got[0].PublishedAt == nil {
		t.Error("joined video fields not populated")
	}
}

func TestSummaryReplace(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSummaryRepository(db)
	ctx := context.Background()

	first := entities.NewPeriodSummary("week 7", "first text", []string{"a"})
	if err := repo.Replace(ctx, first); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	second := entities.NewPeriodSummary("week 7", "second text", []string{"a", "b"})
	if err := repo.Replace(ctx, second); err != nil {
		t.Fatalf("second Replace: %v", err)
	}

	stored, err := repo.GetByLabel(ctx, "week 7")
	if err != nil {
		t.Fatalf("GetByLabel: %v", err)
	}
	if stored.SummaryText != "second text" || len(stored.VideoIDs) != 2 {
		t.Errorf("stored = %+v", stored)
	}

	var count int64
	db.Model(&entities.PeriodSummary{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 summary row, got %d", count)
	}

	if _, err := repo.GetByLabel(ctx, "week 8"); !apperrors.IsCode(err, apperrors.ErrorCode_NOT_FOUND) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

// Three items: one fully processed, one missing its transcript, one
// transcribed but unanalyzed. Each stage touches exactly the right set.
func TestStageSelectionAcrossItems(t *testing.T) {
	db := testutil.OpenTestDB(t)
	videos := NewVideoRepository(db)
	analyses := NewAnalysisRepository(db)
	ctx := context.Background()

	text := "transcript"
	for _, v := range []*entities.Video{
		{ID: "full", ChannelID: "ch1", Title: "full", PublishedAt: ts(14, 0), Transcript: &text},
		{ID: "no-transcript", ChannelID: "ch1", Title: "no-transcript", PublishedAt: ts(13, 0)},
		{ID: "no-analysis", ChannelID: "ch1", Title: "no-analysis", PublishedAt: ts(12, 0), Transcript: &text},
	} {
		if err := videos.Upsert(ctx, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := analyses.Put(ctx, entities.NewAnalysis("full", &entities.AnalysisResult{}, "{}")); err != nil {
		t.Fatal(err)
	}

	missingTranscript, err := videos.MissingTranscript(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(missingTranscript) != 1 || missingTranscript[0].ID != "no-transcript" {
		t.Errorf("missing transcript = %v", missingTranscript)
	}

	missingAnalysis, err := videos.MissingAnalysis(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(missingAnalysis) != 1 || missingAnalysis[0].ID != "no-analysis" {
		t.Errorf("missing analysis = %v", missingAnalysis)
	}

	// Catching the stragglers up empties both work queues.
	if err := videos.AttachTranscript(ctx, "no-transcript", text); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"no-transcript", "no-analysis"} {
		if err := analyses.Put(ctx, entities.NewAnalysis(id, &entities.AnalysisResult{}, "{}")); err != nil {
			t.Fatal(err)
		}
	}
	if left, _ := videos.MissingTranscript(ctx); len(left) != 0 {
		t.Errorf("transcript queue not empty: %v", left)
	}
	if left, _ := videos.MissingAnalysis(ctx); len(left) != 0 {
		t.Errorf("analysis queue not empty: %v", left)
	}
}
