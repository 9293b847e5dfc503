package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	apperrors "github.com/podscout/podscout/errors"
)

const defaultTimedTextBaseURL = "https://www.youtube.com"

// TranscriptFetcher retrieves caption tracks from the YouTube timedtext
// endpoint.
type TranscriptFetcher struct {
	baseURL  string
	language string
	client   *http.Client
}

// NewTranscriptFetcher creates a transcript fetcher for the given
// caption language ("en" when empty).
func NewTranscriptFetcher(language string) *TranscriptFetcher {
	if language == "" {
		language = "en"
	}
	return &TranscriptFetcher{
		baseURL:  defaultTimedTextBaseURL,
		language: language,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewTranscriptFetcherWithBaseURL creates a fetcher against a
// non-default endpoint.
func NewTranscriptFetcherWithBaseURL(baseURL, language string) *TranscriptFetcher {
	f := NewTranscriptFetcher(language)
	f.baseURL = baseURL
	return f
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch downloads and flattens the caption track for a video. Network
// errors are retried briefly; a video without captions is a plain
// per-item failure.
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/timedtext?lang=%s&v=%s", f.baseURL, f.language, videoID)

	var body []byte
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("timedtext returned status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("timedtext returned status %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(fetch, backoff.WithContext(bo, ctx)); err != nil {
		return "", apperrors.ErrTransientFetch("transcript download", err).WithDetail("video_id", videoID)
	}

	if len(body) == 0 {
		return "", fmt.Errorf("no transcript available for video %s", videoID)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("failed to parse transcript: %w", err)
	}
	if len(tt.Texts) == 0 {
		return "", fmt.Errorf("no transcript available for video %s", videoID)
	}

	parts := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		if s := strings.TrimSpace(t.Value); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}
