// Package ingest pulls items from RSS/Atom sources and submits them to
// the portal as draft articles.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/portalhq/portal-cli/content"
	"github.com/portalhq/portal-cli/model"
	"github.com/portalhq/portal-cli/store"
)

// Item is one entry pulled from a source, reduced to the fields the
// portal cares about.
type Item struct {
	GUID      string
	Title     string
	Link      string
	Summary   string
	Content   string
	Tags      []string
	Published time.Time
}

// Fetcher handles fetching and parsing RSS/Atom sources.
type Fetcher struct {
	parser *gofeed.Parser
}

// NewFetcher creates a new Fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{parser: gofeed.NewParser()}
}

// Fetch retrieves and parses a source from a URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, []*Item, error) {
	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch source %s: %w", url, err)
	}
	return parsed.Title, convertItems(parsed.Items), nil
}

// Parse parses feed content from a string.
func (f *Fetcher) Parse(data string) (string, []*Item, error) {
	if data == "" {
		return "", nil, fmt.Errorf("feed content is empty")
	}

	parsed, err := f.parser.ParseString(data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return parsed.Title, convertItems(parsed.Items), nil
}

func convertItems(items []*gofeed.Item) []*Item {
	var out []*Item
	for _, it := range items {
		out = append(out, convertItem(it))
	}
	return out
}

// convertItem reduces a gofeed.Item to an ingest Item.
func convertItem(it *gofeed.Item) *Item {
	item := &Item{
		GUID:    it.GUID,
		Title:   it.Title,
		Link:    it.Link,
		Summary: it.Description,
		Tags:    it.Categories,
	}

	// Use link as GUID if GUID is missing
	if item.GUID == "" {
		item.GUID = it.Link
	}

	// Prefer full content over description
	if it.Content != "" {
		item.Content = it.Content
	} else {
		item.Content = it.Description
	}

	if it.PublishedParsed != nil {
		item.Published = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		item.Published = *it.UpdatedParsed
	} else {
		item.Published = time.Now()
	}

	return item
}

// Draft converts an item into an article draft for the portal. The
// category comes from the source's assigned portal category, never
// from the feed itself. Items always arrive as drafts: publishing is
// an editor's decision.
func (item *Item) Draft(category string) *model.ArticleDraft {
	summary := strings.TrimSpace(item.Summary)
	if summary == item.Content {
		summary = ""
	}

	published := item.Published
	return &model.ArticleDraft{
		Title:       item.Title,
		Summary:     summary,
		Content:     item.Content,
		Category:    category,
		Status:      model.ArticleStatusDraft,
		Tags:        item.Tags,
		PublishDate: &published,
	}
}

// Result is the per-source outcome of an ingest run.
type Result struct {
	Source      string `json:"source"`
	NewArticles int    `json:"new_articles"`
	Skipped     int    `json:"skipped"`
	Error       string `json:"error,omitempty"`
}

// Runner drives an ingest pass over all configured sources.
type Runner struct {
	store       *store.Store
	content     *content.Service
	fetcher     *Fetcher
	log         *zap.Logger
	concurrency int
}

// NewRunner creates a Runner. concurrency bounds the number of sources
// fetched in parallel; zero selects 8.
func NewRunner(st *store.Store, svc *content.Service, log *zap.Logger, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = 8
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		store:       st,
		content:     svc,
		fetcher:     NewFetcher(),
		log:         log,
		concurrency: concurrency,
	}
}

// Run fetches every source and submits its unseen items as draft
// articles. A failing source is reported in its Result and does not
// stop the rest of the run.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	sources, err := r.store.GetAllSources()
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	var mu sync.Mutex
	results := make([]Result, 0, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, src := range sources {
		g.Go(func() error {
			res := r.ingestSource(ctx, src)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// ingestSource pulls one source and submits its unseen items.
func (r *Runner) ingestSource(ctx context.Context, src *model.Source) Result {
	res := Result{Source: src.URL}

	title, items, err := r.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		r.log.Warn("source fetch failed", zap.String("url", src.URL), zap.Error(err))
		res.Error = err.Error()
		return res
	}

	// Remember the source's title once we learn it.
	if src.Title == "" && title != "" {
		src.Title = title
		if err := r.store.SaveSource(src); err != nil {
			r.log.Warn("failed to update source title", zap.String("url", src.URL), zap.Error(err))
		}
	}

	for _, item := range items {
		seen, err := r.store.IsIngested(src.ID, item.GUID)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		if seen {
			res.Skipped++
			continue
		}

		if _, err := r.content.CreateArticle(ctx, item.Draft(src.Category)); err != nil {
			// A rejected item should not poison the rest of the source.
			r.log.Warn("failed to submit item",
				zap.String("source", src.URL),
				zap.String("guid", item.GUID),
				zap.Error(err))
			res.Skipped++
			continue
		}

		if err := r.store.MarkIngested(src.ID, item.GUID); err != nil {
			res.Error = err.Error()
			return res
		}
		res.NewArticles++
	}

	return res
}
