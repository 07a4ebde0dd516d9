package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
	"time"

	"crypto-insight/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RSSNewsProvider serves news from a general crypto RSS feed, keeping the
// items that mention the requested asset.
type RSSNewsProvider struct {
	restClient
}

func NewRSSNewsProvider(tracer trace.Tracer, feedURL string) *RSSNewsProvider {
	return &RSSNewsProvider{restClient: newRESTClient(tracer, Endpoint{
		Name:    "rss",
		BaseURL: feedURL,
		Auth:    AuthNone,
		Accept:  "application/rss+xml, application/xml, text/xml",
		Paths: map[domain.Operation]string{
			domain.OpNews: "",
		},
	})}
}

type rssFeed struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			PubDate     string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

// FetchNews returns feed items whose title or summary mentions symbol or the
// asset name, newest first as published by the feed.
func (p *RSSNewsProvider) FetchNews(ctx context.Context, symbol string) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "rss.fetch-news")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	body, err := p.get(ctx, domain.OpNews, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("rss decode: %w: %v", ErrMalformed, err)
	}

	mentions := mentionPattern(symbol)
	source := firstNonEmpty(sanitizeText(feed.Channel.Title, 120), "rss")

	items := make([]domain.NewsItem, 0, maxNewsItems)
	for _, row := range feed.Channel.Items {
		if len(items) == maxNewsItems {
			break
		}
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		if !mentions.MatchString(title) && !mentions.MatchString(htmlStrip(row.Description)) {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			URL:         sanitizeText(row.Link, 500),
			Source:      source,
			PublishedAt: parseRSSDate(row.PubDate),
		})
	}
	span.SetAttributes(attribute.Int("items", len(items)))
	return items, nil
}

// mentionPattern matches the ticker or the registry name as a whole word.
func mentionPattern(symbol string) *regexp.Regexp {
	asset, _ := domain.LookupAsset(symbol)
	terms := []string{regexp.QuoteMeta(asset.Symbol)}
	if asset.Name != "" && !strings.EqualFold(asset.Name, asset.Symbol) {
		terms = append(terms, regexp.QuoteMeta(asset.Name))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(terms, "|") + `)\b`)
}

func parseRSSDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sanitizeText(in string, maxLen int) string {
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		in = in[:maxLen]
	}
	return in
}
