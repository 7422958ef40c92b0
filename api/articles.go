package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/portalhq/portal-cli/model"
)

// ArticleQuery is the set of list filters the articles endpoint accepts.
type ArticleQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Author   string
	Status   model.ArticleStatus
}

// Values encodes the query as URL parameters, omitting zero values.
func (q ArticleQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Author != "" {
		v.Set("author", q.Author)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	return v
}

// ListArticles fetches articles matching the query.
func (c *Client) ListArticles(ctx context.Context, q ArticleQuery) ([]*model.Article, error) {
	var articles []*model.Article
	if err := c.do(ctx, http.MethodGet, "/articles", q.Values(), nil, &articles, ""); err != nil {
		return nil, err
	}
	for _, a := range articles {
		if err := c.checkPayload("/articles", a); err != nil {
			return nil, err
		}
	}
	return articles, nil
}

// GetArticle fetches a single article by ID.
func (c *Client) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	var article model.Article
	if err := c.do(ctx, http.MethodGet, "/articles/"+url.PathEscape(id), nil, nil, &article, ""); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/articles/:id", &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// CreateArticle submits a new article. Requires an editor token.
func (c *Client) CreateArticle(ctx context.Context, draft *model.ArticleDraft) (*model.Article, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var article model.Article
	if err := c.do(ctx, http.MethodPost, "/articles", nil, draft, &article, ""); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/articles", &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// UpdateArticle replaces the fields of an existing article.
func (c *Client) UpdateArticle(ctx context.Context, id string, draft *model.ArticleDraft) (*model.Article, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var article model.Article
	if err := c.do(ctx, http.MethodPut, "/articles/"+url.PathEscape(id), nil, draft, &article, ""); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/articles/:id", &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// DeleteArticle removes an article.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/articles/"+url.PathEscape(id), nil, nil, nil, "")
}
