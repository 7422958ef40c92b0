package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/portalhq/portal-cli/model"
)

// ListCategories fetches every category, active or not.
func (c *Client) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return c.listCategories(ctx, "/categories")
}

// ActiveCategories fetches only the categories shown on the public
// reading surface.
func (c *Client) ActiveCategories(ctx context.Context) ([]*model.Category, error) {
	return c.listCategories(ctx, "/categories/active")
}

func (c *Client) listCategories(ctx context.Context, path string) ([]*model.Category, error) {
	var categories []*model.Category
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &categories, ""); err != nil {
		return nil, err
	}
	for _, cat := range categories {
		if err := c.checkPayload(path, cat); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

// CreateCategory submits a new category. Requires an editor token.
func (c *Client) CreateCategory(ctx context.Context, draft *model.CategoryDraft) (*model.Category, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var category model.Category
	if err := c.do(ctx, http.MethodPost, "/categories", nil, draft, &category, ""); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/categories", &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory replaces the fields of an existing category.
func (c *Client) UpdateCategory(ctx context.Context, id string, draft *model.CategoryDraft) (*model.Category, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var category model.Category
	if err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), nil, draft, &category, ""); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/categories/:id", &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, nil, "")
}
