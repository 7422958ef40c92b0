package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/portalhq/portal-cli/api"
	"github.com/portalhq/portal-cli/model"
)

func articleQueryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "Page number"},
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 50, Usage: "Maximum number of articles to return"},
		&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Search term"},
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
		&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Usage: "Filter by author"},
		&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status (draft, published)"},
	}
}

func articleDraftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Article title", Required: true},
		&cli.StringFlag{Name: "summary", Usage: "Short summary"},
		&cli.StringFlag{Name: "content", Usage: "Article body"},
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category name"},
		&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Value: "draft", Usage: "Status (draft, published)"},
		&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
		&cli.StringFlag{Name: "image", Usage: "Header image URL"},
		&cli.StringFlag{Name: "publish-date", Usage: "Publish date (RFC 3339)"},
	}
}

// articleDraftFromFlags builds a draft from the create/update flags.
func articleDraftFromFlags(c *cli.Context) (*model.ArticleDraft, error) {
	draft := &model.ArticleDraft{
		Title:    c.String("title"),
		Summary:  c.String("summary"),
		Content:  c.String("content"),
		Category: c.String("category"),
		Status:   model.ArticleStatus(c.String("status")),
		ImageURL: c.String("image"),
	}

	if tags := c.String("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				draft.Tags = append(draft.Tags, t)
			}
		}
	}

	if raw := c.String("publish-date"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid publish date %q: %w", raw, err)
		}
		draft.PublishDate = &ts
	}

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}

func listArticles(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	q := api.ArticleQuery{
		Page:     c.Int("page"),
		Limit:    c.Int("limit"),
		Search:   c.String("search"),
		Category: c.String("category"),
		Author:   c.String("author"),
		Status:   model.ArticleStatus(c.String("status")),
	}

	articles := env.content.Articles(c.Context, q)
	return outputJSON(map[string]interface{}{
		"count":    len(articles),
		"articles": articles,
	})
}

func showArticle(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli articles show <article-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	article := env.content.Article(c.Context, c.Args().Get(0))
	if article == nil {
		return cli.Exit("Article not available", ExitDataError)
	}
	return outputJSON(map[string]interface{}{
		"article": article,
		"likes":   env.content.ArticleLikes(c.Context, article.ID),
	})
}

func listComments(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli articles comments list <article-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	comments := env.content.Comments(c.Context, c.Args().Get(0))
	return outputJSON(map[string]interface{}{
		"count":    len(comments),
		"comments": comments,
	})
}

func addComment(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli articles comments add <article-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleUser); err != nil {
		return err
	}

	draft := &model.CommentDraft{
		ArticleID: c.Args().Get(0),
		Content:   c.String("content"),
	}
	if err := draft.Validate(); err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	comment, err := env.content.AddComment(c.Context, draft)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to add comment: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success": true,
		"comment": comment,
	})
}

func removeComment(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli articles comments remove <comment-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleEditor); err != nil {
		return err
	}

	id := c.Args().Get(0)
	if err := env.content.DeleteComment(c.Context, id); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to remove comment: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":    true,
		"comment_id": id,
	})
}

func createArticle(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleEditor); err != nil {
		return err
	}

	draft, err := articleDraftFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	article, err := env.content.CreateArticle(c.Context, draft)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to create article: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success": true,
		"article": article,
	})
}

func updateArticle(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli articles update <article-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleEditor); err != nil {
		return err
	}

	draft, err := articleDraftFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	article, err := env.content.UpdateArticle(c.Context, c.Args().Get(0), draft)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to update article: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success": true,
		"article": article,
	})
}

func deleteArticle(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli articles delete <article-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleEditor); err != nil {
		return err
	}

	id := c.Args().Get(0)
	if err := env.content.DeleteArticle(c.Context, id); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to delete article: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":    true,
		"article_id": id,
	})
}

func categoryDraftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Category name", Required: true},
		&cli.StringFlag{Name: "description", Usage: "Category description"},
		&cli.BoolFlag{Name: "active", Aliases: []string{"a"}, Value: true, Usage: "Show on the public surface"},
	}
}

func categoryDraftFromFlags(c *cli.Context) (*model.CategoryDraft, error) {
	draft := &model.CategoryDraft{
		Name:        c.String("name"),
		Description: c.String("description"),
		Active:      c.Bool("active"),
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}

func listCategories(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	categories := env.content.Categories(c.Context, c.Bool("active"))
	return outputJSON(map[string]interface{}{
		"count":      len(categories),
		"categories": categories,
	})
}

func createCategory(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleAdmin); err != nil {
		return err
	}

	draft, err := categoryDraftFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	category, err := env.content.CreateCategory(c.Context, draft)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to create category: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":  true,
		"category": category,
	})
}

func updateCategory(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli categories update <category-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleAdmin); err != nil {
		return err
	}

	draft, err := categoryDraftFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	category, err := env.content.UpdateCategory(c.Context, c.Args().Get(0), draft)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to update category: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":  true,
		"category": category,
	})
}

func deleteCategory(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli categories delete <category-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleAdmin); err != nil {
		return err
	}

	id := c.Args().Get(0)
	if err := env.content.DeleteCategory(c.Context, id); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to delete category: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":     true,
		"category_id": id,
	})
}

func listEditors(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleAdmin); err != nil {
		return err
	}

	editors := env.content.Editors(c.Context)
	return outputJSON(map[string]interface{}{
		"count":   len(editors),
		"editors": editors,
	})
}

func listSubscriptions(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleAdmin); err != nil {
		return err
	}

	subs := env.content.Subscriptions(c.Context)
	return outputJSON(map[string]interface{}{
		"count":         len(subs),
		"subscriptions": subs,
	})
}

func subscribe(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	sub, err := env.content.Subscribe(c.Context, c.String("email"), c.String("name"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to subscribe: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":      true,
		"subscription": sub,
	})
}

func updateSubscription(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli newsletter update <subscription-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleAdmin); err != nil {
		return err
	}

	status := model.SubscriptionStatus(c.String("status"))
	sub, err := env.content.UpdateSubscription(c.Context, c.Args().Get(0), c.String("name"), status)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to update subscription: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":      true,
		"subscription": sub,
	})
}

func removeSubscription(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: portal-cli newsletter remove <subscription-id>", ExitUsageError)
	}

	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if err := requireRole(c, env, model.RoleAdmin); err != nil {
		return err
	}

	id := c.Args().Get(0)
	if err := env.content.DeleteSubscription(c.Context, id); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to remove subscription: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":         true,
		"subscription_id": id,
	})
}
