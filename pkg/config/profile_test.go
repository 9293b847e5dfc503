package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/podscout/podscout/errors"
)

const sampleConfig = `
default_profile: fpl
data_dir: /tmp/podscout-test
profiles:
  fpl:
    channels:
      - id: fplshow
        name: FPL Show
        source_channel_id: UCshow
    analysis_prompt: "analyze {title} {channel} {transcript}"
    summary_prompt: "summarize {num_videos} {analysis_data}"
    schedule:
      type: external_epoch
    remote_sync:
      bucket: podscout-backups
  minimal:
    channels:
      - id: other
        name: Other Pod
        source_channel_id: UCother
    analysis_prompt: "analyze {transcript}"
    summary_prompt: "summarize {analysis_data}"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfiles(t *testing.T) {
	f, err := LoadProfiles(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}

	fpl, err := f.Profile("")
	if err != nil {
		t.Fatalf("default profile: %v", err)
	}
	if fpl.Name != "fpl" {
		t.Errorf("name = %q", fpl.Name)
	}
	if fpl.Schedule.Type != ScheduleExternalEpoch {
		t.Errorf("schedule = %q", fpl.Schedule.Type)
	}
	if fpl.RemoteSync == nil || fpl.RemoteSync.PathPrefix != "podscout" {
		t.Errorf("remote sync defaults not applied: %+v", fpl.RemoteSync)
	}

	minimal, err := f.Profile("minimal")
	if err != nil {
		t.Fatalf("minimal profile: %v", err)
	}
	if minimal.Schedule.Type != ScheduleRollingDays || minimal.Schedule.Days != 7 {
		t.Errorf("schedule defaults not applied: %+v", minimal.Schedule)
	}
	if minimal.Pricing.InputPerMTok != 0.80 || minimal.Pricing.OutputPerMTok != 4.0 {
		t.Errorf("pricing defaults not applied: %+v", minimal.Pricing)
	}
	if minimal.RemoteSync != nil {
		t.Error("remote sync should stay unset")
	}
}

func TestLoadProfilesUnknownDefault(t *testing.T) {
	_, err := LoadProfiles(writeConfig(t, `
default_profile: nope
profiles:
  fpl:
    channels:
      - id: a
        name: A
        source_channel_id: UCa
    analysis_prompt: p
    summary_prompt: p
`))
	if !apperrors.IsCode(err, apperrors.ErrorCode_CONFIGURATION) {
		t.Errorf("expected CONFIGURATION, got %v", err)
	}
}

func TestLoadProfilesMissingChannels(t *testing.T) {
	_, err := LoadProfiles(writeConfig(t, `
default_profile: fpl
profiles:
  fpl:
    analysis_prompt: p
    summary_prompt: p
`))
	if !apperrors.IsCode(err, apperrors.ErrorCode_CONFIGURATION) {
		t.Errorf("expected CONFIGURATION, got %v", err)
	}
}

func TestProfileUnknownName(t *testing.T) {
	f, err := LoadProfiles(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Profile("nope"); !apperrors.IsCode(err, apperrors.ErrorCode_CONFIGURATION) {
		t.Errorf("expected CONFIGURATION, got %v", err)
	}
}

func TestDBPathIsolatesProfiles(t *testing.T) {
	f, err := LoadProfiles(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	a := f.DBPath("fpl")
	b := f.DBPath("minimal")
	if a == b {
		t.Errorf("profiles share a database path: %s", a)
	}
	if filepath.Base(a) != "podscout.db" {
		t.Errorf("db file = %s", a)
	}
}

func TestChannelFeedURL(t *testing.T) {
	c := Channel{ID: "fplshow", Name: "FPL Show", SourceChannelID: "UCshow"}
	want := "https://www.youtube.com/feeds/videos.xml?channel_id=UCshow"
	if got := c.FeedURL(); got != want {
		t.Errorf("FeedURL = %q", got)
	}
}

func TestChannelNameFallback(t *testing.T) {
	p := &Profile{Channels: []Channel{{ID: "a", Name: "A", SourceChannelID: "UCa"}}}
	if got := p.ChannelName("a"); got != "A" {
		t.Errorf("ChannelName = %q", got)
	}
	if got := p.ChannelName("missing"); got != "Unknown" {
		t.Errorf("fallback = %q", got)
	}
}
