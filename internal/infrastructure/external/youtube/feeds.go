package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedEntry is one video entry from a channel feed.
type FeedEntry struct {
	VideoID     string
	Title       string
	PublishedAt *time.Time
}

// ChannelPoller reads YouTube channel RSS feeds.
type ChannelPoller struct {
	parser *gofeed.Parser
}

// NewChannelPoller creates a channel poller.
func NewChannelPoller() *ChannelPoller {
	return &ChannelPoller{parser: gofeed.NewParser()}
}

// FetchEntries fetches and parses a channel feed. Entries without a
// resolvable video id are skipped.
func (p *ChannelPoller) FetchEntries(ctx context.Context, feedURL string) ([]FeedEntry, error) {
	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel feed: %w", err)
	}

	entries := make([]FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		videoID := videoIDFromItem(item)
		if videoID == "" {
			continue
		}
		entries = append(entries, FeedEntry{
			VideoID:     videoID,
			Title:       item.Title,
			PublishedAt: item.PublishedParsed,
		})
	}
	return entries, nil
}

// videoIDFromItem reads the yt:videoId extension, falling back to the
// watch link.
func videoIDFromItem(item *gofeed.Item) string {
	if ext, ok := item.Extensions["yt"]; ok {
		if ids, ok := ext["videoId"]; ok && len(ids) > 0 && ids[0].Value != "" {
			return ids[0].Value
		}
	}
	return videoIDFromLink(item.Link)
}

// videoIDFromLink extracts the id from a youtube.com/watch?v= link.
func videoIDFromLink(link string) string {
	const marker = "watch?v="
	idx := strings.Index(link, marker)
	if idx == -1 {
		return ""
	}
	id := link[idx+len(marker):]
	if amp := strings.Index(id, "&"); amp != -1 {
		id = id[:amp]
	}
	return id
}
