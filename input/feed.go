// Package input provides alternative sources for the pipeline's initial
// text when no positional argument is given.
package input

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedItem is one entry of a syndication feed, reduced to what the
// pipeline needs.
type FeedItem struct {
	Title           string
	Summary         string
	Link            string
	PublicationDate time.Time
}

// FeedSource turns the newest item of an RSS/Atom feed into pipeline input.
type FeedSource struct {
	parser *gofeed.Parser
}

func NewFeedSource() *FeedSource {
	return &FeedSource{
		parser: gofeed.NewParser(),
	}
}

// LatestFromURL fetches the feed and returns the newest item's text.
func (s *FeedSource) LatestFromURL(url string) (string, error) {
	feed, err := s.parser.ParseURL(url)
	if err != nil {
		return "", fmt.Errorf("failed to parse feed from URL %s: %w", url, err)
	}
	return latestText(extractItems(feed))
}

// LatestFromString is LatestFromURL over an already-fetched document.
func (s *FeedSource) LatestFromString(doc string) (string, error) {
	feed, err := s.parser.ParseString(doc)
	if err != nil {
		return "", fmt.Errorf("failed to parse feed: %w", err)
	}
	return latestText(extractItems(feed))
}

func latestText(items []FeedItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("feed has no items")
	}

	newest := items[0]
	for _, item := range items[1:] {
		if item.PublicationDate.After(newest.PublicationDate) {
			newest = item
		}
	}

	text := strings.TrimSpace(newest.Title)
	if summary := strings.TrimSpace(newest.Summary); summary != "" {
		text = text + "\n\n" + summary
	}
	return text, nil
}

func extractItems(feed *gofeed.Feed) []FeedItem {
	items := make([]FeedItem, 0, len(feed.Items))

	for _, item := range feed.Items {
		fi := FeedItem{
			Title:   item.Title,
			Summary: item.Content,
			Link:    item.Link,
		}

		if fi.Summary == "" {
			fi.Summary = item.Description
		}

		if item.PublishedParsed != nil {
			fi.PublicationDate = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			fi.PublicationDate = *item.UpdatedParsed
		}

		items = append(items, fi)
	}

	return items
}
