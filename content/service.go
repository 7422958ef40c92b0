// Package content is the data layer the CLI surfaces read through. All
// reads go via the query cache and degrade to empty results on fetch
// failure, so read-only output never crashes on a flaky connection.
// Mutations hit the API directly and invalidate the touched resource
// kind on success only.
package content

import (
	"context"

	"go.uber.org/zap"

	"github.com/portalhq/portal-cli/api"
	"github.com/portalhq/portal-cli/cache"
	"github.com/portalhq/portal-cli/model"
)

// Resource kinds used as coarse cache-invalidation buckets.
const (
	KindArticles      = "articles"
	KindCategories    = "categories"
	KindComments      = "comments"
	KindLikes         = "likes"
	KindEditors       = "editors"
	KindSubscriptions = "newsletter-subscriptions"
)

// Service exposes the portal's content with caching semantics.
type Service struct {
	client *api.Client
	cache  *cache.Cache
	log    *zap.Logger
}

// NewService creates a Service.
func NewService(client *api.Client, c *cache.Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, cache: c, log: log}
}

// Articles lists articles matching the query. On fetch failure it
// returns an empty slice and logs the cause.
func (s *Service) Articles(ctx context.Context, q api.ArticleQuery) []*model.Article {
	params := q.Values().Encode()
	v, err := s.cache.Do(ctx, KindArticles, params, func(ctx context.Context) (any, error) {
		return s.client.ListArticles(ctx, q)
	})
	if err != nil {
		s.log.Warn("article query failed, serving empty result", zap.String("params", params), zap.Error(err))
		return []*model.Article{}
	}
	articles, ok := v.([]*model.Article)
	if !ok || articles == nil {
		return []*model.Article{}
	}
	return articles
}

// Article fetches one article. A transient failure yields nil; the
// caller decides how to present "not available".
func (s *Service) Article(ctx context.Context, id string) *model.Article {
	v, err := s.cache.Do(ctx, KindArticles, "id="+id, func(ctx context.Context) (any, error) {
		return s.client.GetArticle(ctx, id)
	})
	if err != nil {
		s.log.Warn("article fetch failed", zap.String("id", id), zap.Error(err))
		return nil
	}
	article, _ := v.(*model.Article)
	return article
}

// Categories lists categories; activeOnly restricts to those shown on
// the public surface. Degrades to empty on failure.
func (s *Service) Categories(ctx context.Context, activeOnly bool) []*model.Category {
	params := ""
	if activeOnly {
		params = "active=true"
	}
	v, err := s.cache.Do(ctx, KindCategories, params, func(ctx context.Context) (any, error) {
		if activeOnly {
			return s.client.ActiveCategories(ctx)
		}
		return s.client.ListCategories(ctx)
	})
	if err != nil {
		s.log.Warn("category query failed, serving empty result", zap.Error(err))
		return []*model.Category{}
	}
	categories, ok := v.([]*model.Category)
	if !ok || categories == nil {
		return []*model.Category{}
	}
	return categories
}

// Comments lists the comments on an article. Degrades to empty on
// failure.
func (s *Service) Comments(ctx context.Context, articleID string) []*model.Comment {
	v, err := s.cache.Do(ctx, KindComments, "article="+articleID, func(ctx context.Context) (any, error) {
		return s.client.ArticleComments(ctx, articleID)
	})
	if err != nil {
		s.log.Warn("comment query failed, serving empty result", zap.String("article_id", articleID), zap.Error(err))
		return []*model.Comment{}
	}
	comments, ok := v.([]*model.Comment)
	if !ok || comments == nil {
		return []*model.Comment{}
	}
	return comments
}

// ArticleLikes returns an article's like count, zero when the count is
// not available.
func (s *Service) ArticleLikes(ctx context.Context, articleID string) int {
	v, err := s.cache.Do(ctx, KindLikes, "article="+articleID, func(ctx context.Context) (any, error) {
		return s.client.ArticleLikes(ctx, articleID)
	})
	if err != nil {
		s.log.Warn("like count fetch failed", zap.String("article_id", articleID), zap.Error(err))
		return 0
	}
	count, _ := v.(int)
	return count
}

// Editors lists staff accounts. Degrades to empty on failure.
func (s *Service) Editors(ctx context.Context) []*model.Editor {
	v, err := s.cache.Do(ctx, KindEditors, "", func(ctx context.Context) (any, error) {
		return s.client.ListEditors(ctx)
	})
	if err != nil {
		s.log.Warn("editor query failed, serving empty result", zap.Error(err))
		return []*model.Editor{}
	}
	editors, ok := v.([]*model.Editor)
	if !ok || editors == nil {
		return []*model.Editor{}
	}
	return editors
}

// Subscriptions lists newsletter subscriptions. Degrades to empty on
// failure.
func (s *Service) Subscriptions(ctx context.Context) []*model.NewsletterSubscription {
	v, err := s.cache.Do(ctx, KindSubscriptions, "", func(ctx context.Context) (any, error) {
		return s.client.ListSubscriptions(ctx)
	})
	if err != nil {
		s.log.Warn("subscription query failed, serving empty result", zap.Error(err))
		return []*model.NewsletterSubscription{}
	}
	subs, ok := v.([]*model.NewsletterSubscription)
	if !ok || subs == nil {
		return []*model.NewsletterSubscription{}
	}
	return subs
}

// CreateArticle submits a new article and invalidates cached article
// queries on success.
func (s *Service) CreateArticle(ctx context.Context, draft *model.ArticleDraft) (*model.Article, error) {
	v, err := s.cache.Mutate(ctx, KindArticles, func(ctx context.Context) (any, error) {
		return s.client.CreateArticle(ctx, draft)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Article), nil
}

// UpdateArticle updates an article and invalidates on success.
func (s *Service) UpdateArticle(ctx context.Context, id string, draft *model.ArticleDraft) (*model.Article, error) {
	v, err := s.cache.Mutate(ctx, KindArticles, func(ctx context.Context) (any, error) {
		return s.client.UpdateArticle(ctx, id, draft)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Article), nil
}

// DeleteArticle removes an article and invalidates on success.
func (s *Service) DeleteArticle(ctx context.Context, id string) error {
	_, err := s.cache.Mutate(ctx, KindArticles, func(ctx context.Context) (any, error) {
		return nil, s.client.DeleteArticle(ctx, id)
	})
	return err
}

// AddComment posts a comment and invalidates cached comment lists on
// success.
func (s *Service) AddComment(ctx context.Context, draft *model.CommentDraft) (*model.Comment, error) {
	v, err := s.cache.Mutate(ctx, KindComments, func(ctx context.Context) (any, error) {
		return s.client.CreateComment(ctx, draft)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Comment), nil
}

// DeleteComment removes a comment and invalidates on success.
func (s *Service) DeleteComment(ctx context.Context, id string) error {
	_, err := s.cache.Mutate(ctx, KindComments, func(ctx context.Context) (any, error) {
		return nil, s.client.DeleteComment(ctx, id)
	})
	return err
}

// CreateCategory submits a new category and invalidates on success.
func (s *Service) CreateCategory(ctx context.Context, draft *model.CategoryDraft) (*model.Category, error) {
	v, err := s.cache.Mutate(ctx, KindCategories, func(ctx context.Context) (any, error) {
		return s.client.CreateCategory(ctx, draft)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Category), nil
}

// UpdateCategory updates a category and invalidates on success.
func (s *Service) UpdateCategory(ctx context.Context, id string, draft *model.CategoryDraft) (*model.Category, error) {
	v, err := s.cache.Mutate(ctx, KindCategories, func(ctx context.Context) (any, error) {
		return s.client.UpdateCategory(ctx, id, draft)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Category), nil
}

// DeleteCategory removes a category and invalidates on success.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	_, err := s.cache.Mutate(ctx, KindCategories, func(ctx context.Context) (any, error) {
		return nil, s.client.DeleteCategory(ctx, id)
	})
	return err
}

// Subscribe signs an email up for the newsletter and invalidates the
// subscription list on success.
func (s *Service) Subscribe(ctx context.Context, email, name string) (*model.NewsletterSubscription, error) {
	v, err := s.cache.Mutate(ctx, KindSubscriptions, func(ctx context.Context) (any, error) {
		return s.client.Subscribe(ctx, email, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.NewsletterSubscription), nil
}

// UpdateSubscription changes a subscription and invalidates on success.
func (s *Service) UpdateSubscription(ctx context.Context, id, name string, status model.SubscriptionStatus) (*model.NewsletterSubscription, error) {
	v, err := s.cache.Mutate(ctx, KindSubscriptions, func(ctx context.Context) (any, error) {
		return s.client.UpdateSubscription(ctx, id, name, status)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.NewsletterSubscription), nil
}

// DeleteSubscription removes a subscription and invalidates on success.
func (s *Service) DeleteSubscription(ctx context.Context, id string) error {
	_, err := s.cache.Mutate(ctx, KindSubscriptions, func(ctx context.Context) (any, error) {
		return nil, s.client.DeleteSubscription(ctx, id)
	})
	return err
}
