package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/portalhq/portal-cli/model"
)

// ListSubscriptions fetches all newsletter subscriptions. Admin only.
func (c *Client) ListSubscriptions(ctx context.Context) ([]*model.NewsletterSubscription, error) {
	var subs []*model.NewsletterSubscription
	if err := c.do(ctx, http.MethodGet, "/newsletter-subscriptions", nil, nil, &subs, ""); err != nil {
		return nil, err
	}
	for _, s := range subs {
		if err := c.checkPayload("/newsletter-subscriptions", s); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

// Subscribe signs an email up for the newsletter. Works anonymously.
func (c *Client) Subscribe(ctx context.Context, email, name string) (*model.NewsletterSubscription, error) {
	body := map[string]string{"email": email, "name": name}

	var sub model.NewsletterSubscription
	if err := c.do(ctx, http.MethodPost, "/newsletter-subscriptions/subscribe", nil, body, &sub, ""); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/newsletter-subscriptions/subscribe", &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubscription changes a subscription's name or status.
func (c *Client) UpdateSubscription(ctx context.Context, id string, name string, status model.SubscriptionStatus) (*model.NewsletterSubscription, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if status != "" {
		body["status"] = string(status)
	}

	var sub model.NewsletterSubscription
	if err := c.do(ctx, http.MethodPut, "/newsletter-subscriptions/"+url.PathEscape(id), nil, body, &sub, ""); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/newsletter-subscriptions/:id", &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubscription removes a subscription outright.
func (c *Client) DeleteSubscription(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/newsletter-subscriptions/"+url.PathEscape(id), nil, nil, nil, "")
}
