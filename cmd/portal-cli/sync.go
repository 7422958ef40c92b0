package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/portalhq/portal-cli/api"
	"github.com/portalhq/portal-cli/ingest"
	"github.com/portalhq/portal-cli/model"
	"github.com/portalhq/portal-cli/opml"
	"github.com/portalhq/portal-cli/store"
)

// syncMirror pulls articles and categories from the portal into the
// local database so they can be queried offline.
func syncMirror(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	articles, err := env.client.ListArticles(c.Context, api.ArticleQuery{Limit: c.Int("limit")})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to fetch articles: %v", err), ExitDataError)
	}

	categories, err := env.client.ListCategories(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to fetch categories: %v", err), ExitDataError)
	}

	saved := 0
	var errs []string
	for _, a := range articles {
		if err := s.SaveArticle(a); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", a.ID, err))
			continue
		}
		saved++
	}
	for _, cat := range categories {
		if err := s.SaveCategory(cat); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", cat.ID, err))
		}
	}

	return outputJSON(map[string]interface{}{
		"articles":   saved,
		"categories": len(categories),
		"errors":     errs,
	})
}

func listLocal(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	opts, err := store.BuildQueryOptions(
		c.Int("limit"),
		c.Int("offset"),
		c.String("category"),
		c.String("search"),
		c.String("status"),
		c.String("since"),
	)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Invalid query options: %v", err), ExitUsageError)
	}

	articles, err := s.GetArticles(opts)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get articles: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"count":    len(articles),
		"limit":    opts.Limit,
		"offset":   opts.Offset,
		"articles": articles,
	})
}

func showLocal(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli local show <article-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	article, err := s.GetArticle(c.Args().Get(0))
	if errors.Is(err, store.ErrNotFound) {
		return cli.Exit("Article not found in local mirror (run: portal-cli sync)", ExitDataError)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get article: %v", err), ExitDataError)
	}

	return outputJSON(article)
}

func addSource(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli sources add <url>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	src := &model.Source{
		URL:      c.Args().Get(0),
		Category: c.String("category"),
	}
	if err := src.Validate(); err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	// Fetch once up front so a typoed URL fails here, not at ingest time.
	fetcher := ingest.NewFetcher()
	title, _, err := fetcher.Fetch(c.Context, src.URL)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to fetch source: %v", err), ExitDataError)
	}
	src.Title = title

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	if err := s.SaveSource(src); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to save source: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success": true,
		"source":  src,
	})
}

func listSources(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	sources, err := s.GetAllSources()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get sources: %v", err), ExitDataError)
	}

	return outputJSON(sources)
}

func removeSource(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli sources remove <source-id>", ExitUsageError)
	}

	var sourceID int64
	if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &sourceID); err != nil {
		return cli.Exit("Invalid source ID", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	if err := s.DeleteSource(sourceID); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to delete source: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":   true,
		"source_id": sourceID,
	})
}

func importSources(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli sources import <opml-file>", ExitUsageError)
	}

	file, err := os.Open(c.Args().Get(0))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to open OPML file: %v", err), ExitDataError)
	}
	defer file.Close()

	sources, err := opml.Parse(file)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to parse OPML: %v", err), ExitDataError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	imported := 0
	skipped := 0
	var errs []string

	for _, src := range sources {
		if err := s.SaveSource(src); err != nil {
			// Source might already exist (duplicate URL)
			skipped++
			errs = append(errs, fmt.Sprintf("%s: %v", src.URL, err))
			continue
		}
		imported++
	}

	return outputJSON(map[string]interface{}{
		"success":  true,
		"imported": imported,
		"skipped":  skipped,
		"total":    len(sources),
		"errors":   errs,
	})
}

func exportSources(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	sources, err := s.GetAllSources()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get sources: %v", err), ExitDataError)
	}

	outputPath := c.String("output")
	var writer io.Writer

	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to create output file: %v", err), ExitDataError)
		}
		defer file.Close()
		writer = file
	}

	if err := opml.Generate(writer, sources); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to generate OPML: %v", err), ExitDataError)
	}

	if outputPath != "" {
		return outputJSON(map[string]interface{}{
			"success": true,
			"file":    outputPath,
			"count":   len(sources),
		})
	}

	return nil
}

// runIngest fetches every source and submits unseen items as drafts.
// Needs the editor role because drafts are created through the API.
func runIngest(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleEditor); err != nil {
		return err
	}

	s, err := getStore(env)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	concurrency := c.Int("concurrency")
	if concurrency <= 0 {
		concurrency = env.cfg.Ingest.Concurrency
	}

	runner := ingest.NewRunner(s, env.content, env.log, concurrency)
	results, err := runner.Run(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Ingest failed: %v", err), ExitDataError)
	}

	newArticles := 0
	for _, r := range results {
		newArticles += r.NewArticles
	}

	return outputJSON(map[string]interface{}{
		"sources":      len(results),
		"new_articles": newArticles,
		"results":      results,
	})
}
