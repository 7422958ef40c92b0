// Package model defines the core data structures for portal-cli.
package model

import (
	"errors"
	"time"
)

// Role is a user's permission level on the portal.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

// User is the profile snapshot the portal returns for the authenticated
// account.
type User struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Email          string `json:"email" validate:"required,email"`
	Avatar         string `json:"avatar,omitempty"`
	Role           Role   `json:"role" validate:"required,oneof=admin editor user"`
	TotalFavorites int    `json:"total_favorites"`
	TotalLikes     int    `json:"total_likes"`
}

// IsAdmin returns true for admin accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsEditor returns true for accounts that may manage content.
// Admins count as editors.
func (u *User) IsEditor() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article is a server-owned article snapshot. The client never
// originates an ID; IDs only ever arrive from the API.
type Article struct {
	ID          string        `json:"id" validate:"required"`
	Title       string        `json:"title" validate:"required"`
	Summary     string        `json:"summary,omitempty"`
	Content     string        `json:"content,omitempty"`
	Category    string        `json:"category,omitempty"`
	Author      string        `json:"author,omitempty"`
	Status      ArticleStatus `json:"status" validate:"required,oneof=draft published"`
	Tags        []string      `json:"tags,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	IsDetach    bool          `json:"isDetach"`
	PublishDate *time.Time    `json:"publishDate,omitempty"`
	CreatedAt   time.Time     `json:"createdAt,omitempty"`
}

// IsPublished returns true once the article is live.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// HasTag checks if the article carries the specified tag.
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ArticleDraft holds the client-supplied fields for creating or
// updating an article.
type ArticleDraft struct {
	Title       string        `json:"title"`
	Summary     string        `json:"summary,omitempty"`
	Content     string        `json:"content,omitempty"`
	Category    string        `json:"category,omitempty"`
	Author      string        `json:"author,omitempty"`
	Status      ArticleStatus `json:"status,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	IsDetach    bool          `json:"isDetach,omitempty"`
	PublishDate *time.Time    `json:"publishDate,omitempty"`
}

// Validate checks that the draft has the fields the server requires.
func (d *ArticleDraft) Validate() error {
	if d.Title == "" {
		return errors.New("article title is required")
	}
	if d.Status != "" && d.Status != ArticleStatusDraft && d.Status != ArticleStatusPublished {
		return errors.New("article status must be draft or published")
	}
	return nil
}

// Comment is a reader comment attached to an article.
type Comment struct {
	ID        string    `json:"id" validate:"required"`
	ArticleID string    `json:"articleId" validate:"required"`
	Author    string    `json:"author,omitempty"`
	Content   string    `json:"content" validate:"required"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// CommentDraft holds the client-supplied fields for posting a comment.
// The author comes from the bearer token on the server side.
type CommentDraft struct {
	ArticleID string `json:"articleId"`
	Content   string `json:"content"`
}

// Validate checks that the comment is sendable.
func (d *CommentDraft) Validate() error {
	if d.ArticleID == "" {
		return errors.New("comment article ID is required")
	}
	if d.Content == "" {
		return errors.New("comment content is required")
	}
	return nil
}

// Category is a server-owned article category.
type Category struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// CategoryDraft holds the client-supplied fields for category writes.
type CategoryDraft struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// Validate checks that the category draft is sendable.
func (d *CategoryDraft) Validate() error {
	if d.Name == "" {
		return errors.New("category name is required")
	}
	return nil
}

// Editor is a portal staff account as listed by the editors endpoint.
type Editor struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name"`
	Email     string    `json:"email" validate:"required,email"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      Role      `json:"role" validate:"required,oneof=admin editor user"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// SubscriptionStatus is the lifecycle state of a newsletter subscription.
type SubscriptionStatus string

const (
	SubscriptionActive       SubscriptionStatus = "active"
	SubscriptionInactive     SubscriptionStatus = "inactive"
	SubscriptionUnsubscribed SubscriptionStatus = "unsubscribed"
)

// NewsletterSubscription is a server-owned newsletter signup.
type NewsletterSubscription struct {
	ID        string             `json:"id" validate:"required"`
	Name      string             `json:"name"`
	Email     string             `json:"email" validate:"required,email"`
	Status    SubscriptionStatus `json:"status" validate:"omitempty,oneof=active inactive unsubscribed"`
	CreatedAt time.Time          `json:"createdAt,omitempty"`
}

// Source is a local RSS/Atom ingest source. Items fetched from a source
// are submitted to the portal as draft articles.
type Source struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Category     string `json:"category,omitempty"`
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// Validate checks if the source has required fields.
func (s *Source) Validate() error {
	if s.URL == "" {
		return errors.New("source URL is required")
	}
	return nil
}
