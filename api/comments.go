package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/portalhq/portal-cli/model"
)

// ArticleComments fetches the comments posted on an article.
func (c *Client) ArticleComments(ctx context.Context, articleID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	if err := c.do(ctx, http.MethodGet, "/comments/article/"+url.PathEscape(articleID), nil, nil, &comments, ""); err != nil {
		return nil, err
	}
	for _, cm := range comments {
		if err := c.checkPayload("/comments/article/:id", cm); err != nil {
			return nil, err
		}
	}
	return comments, nil
}

// CreateComment posts a comment. Requires an authenticated token; the
// server attributes the comment to the token's account.
func (c *Client) CreateComment(ctx context.Context, draft *model.CommentDraft) (*model.Comment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var comment model.Comment
	if err := c.do(ctx, http.MethodPost, "/comments", nil, draft, &comment, ""); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/comments", &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(id), nil, nil, nil, "")
}

// ArticleLikes fetches the like count for an article.
func (c *Client) ArticleLikes(ctx context.Context, articleID string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/likes/article/"+url.PathEscape(articleID)+"/count", nil, nil, &out, ""); err != nil {
		return 0, err
	}
	return out.Count, nil
}
