// Package store provides the local SQLite database for portal-cli:
// an offline mirror of fetched articles/categories and the list of
// RSS ingest sources.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/portalhq/portal-cli/model"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the SQLite database.
type Store struct {
	db *sql.DB
}

// QueryOptions specifies how to query the offline article mirror.
type QueryOptions struct {
	Limit     int
	Offset    int
	Category  string
	Search    string
	Status    model.ArticleStatus
	SinceTime *int64 // Unix timestamp on publish_date
}

// New creates a new Store with the given database path.
// Use ":memory:" for an in-memory database (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema creates the database tables and indexes.
func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT,
		content TEXT,
		category TEXT,
		author TEXT,
		status TEXT NOT NULL,
		tags TEXT,
		image_url TEXT,
		is_detach INTEGER DEFAULT 0,
		publish_date INTEGER,
		created_at INTEGER,
		synced_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		active INTEGER DEFAULT 1,
		created_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT UNIQUE NOT NULL,
		title TEXT,
		category TEXT,
		etag TEXT,
		last_modified TEXT
	);

	CREATE TABLE IF NOT EXISTS ingested_items (
		source_id INTEGER NOT NULL,
		guid TEXT NOT NULL,
		PRIMARY KEY (source_id, guid),
		FOREIGN KEY (source_id) REFERENCES sources(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_articles_publish_date ON articles(publish_date DESC);
	CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
	CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveArticle upserts an article snapshot into the offline mirror.
func (s *Store) SaveArticle(a *model.Article) error {
	if a.ID == "" {
		return errors.New("article ID is required")
	}

	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	var publishDate any
	if a.PublishDate != nil {
		publishDate = a.PublishDate.Unix()
	}
	var createdAt any
	if !a.CreatedAt.IsZero() {
		createdAt = a.CreatedAt.Unix()
	}

	_, err = s.db.Exec(
		`INSERT INTO articles (id, title, summary, content, category, author, status, tags, image_url, is_detach, publish_date, created_at, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			content = excluded.content,
			category = excluded.category,
			author = excluded.author,
			status = excluded.status,
			tags = excluded.tags,
			image_url = excluded.image_url,
			is_detach = excluded.is_detach,
			publish_date = excluded.publish_date,
			created_at = excluded.created_at,
			synced_at = excluded.synced_at`,
		a.ID, a.Title, a.Summary, a.Content, a.Category, a.Author, string(a.Status),
		string(tags), a.ImageURL, boolToInt(a.IsDetach), publishDate, createdAt, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

const articleColumns = "id, title, summary, content, category, author, status, tags, image_url, is_detach, publish_date, created_at"

// scanArticle reads one article row.
func scanArticle(scan func(dest ...any) error) (*model.Article, error) {
	a := &model.Article{}
	var tags sql.NullString
	var status string
	var isDetach int
	var publishDate, createdAt sql.NullInt64

	err := scan(&a.ID, &a.Title, &a.Summary, &a.Content, &a.Category, &a.Author,
		&status, &tags, &a.ImageURL, &isDetach, &publishDate, &createdAt)
	if err != nil {
		return nil, err
	}

	a.Status = model.ArticleStatus(status)
	a.IsDetach = intToBool(isDetach)
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &a.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	if publishDate.Valid {
		t := unixToTime(publishDate.Int64)
		a.PublishDate = &t
	}
	if createdAt.Valid {
		a.CreatedAt = unixToTime(createdAt.Int64)
	}
	return a, nil
}

// GetArticle retrieves an article from the mirror by ID.
func (s *Store) GetArticle(id string) (*model.Article, error) {
	row := s.db.QueryRow("SELECT "+articleColumns+" FROM articles WHERE id = ?", id)

	a, err := scanArticle(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

// GetArticles retrieves mirrored articles with optional filtering and
// pagination, newest publish date first.
func (s *Store) GetArticles(opts QueryOptions) ([]*model.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles WHERE 1=1"
	args := []any{}

	if opts.Category != "" {
		query += " AND category = ?"
		args = append(args, opts.Category)
	}

	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, string(opts.Status))
	}

	if opts.Search != "" {
		query += " AND (title LIKE ? OR summary LIKE ?)"
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern)
	}

	if opts.SinceTime != nil {
		query += " AND publish_date >= ?"
		args = append(args, *opts.SinceTime)
	}

	query += " ORDER BY publish_date DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		// SQLite only accepts OFFSET after a LIMIT clause; -1 is unbounded
		query += " LIMIT -1"
	}

	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// DeleteArticle removes an article from the mirror.
func (s *Store) DeleteArticle(id string) error {
	_, err := s.db.Exec("DELETE FROM articles WHERE id = ?", id)
	return err
}

// SaveCategory upserts a category snapshot.
func (s *Store) SaveCategory(c *model.Category) error {
	if c.ID == "" {
		return errors.New("category ID is required")
	}

	var createdAt any
	if !c.CreatedAt.IsZero() {
		createdAt = c.CreatedAt.Unix()
	}

	_, err := s.db.Exec(
		`INSERT INTO categories (id, name, description, active, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			active = excluded.active,
			created_at = excluded.created_at`,
		c.ID, c.Name, c.Description, boolToInt(c.Active), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// GetAllCategories retrieves every mirrored category.
func (s *Store) GetAllCategories() ([]*model.Category, error) {
	rows, err := s.db.Query("SELECT id, name, description, active, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c := &model.Category{}
		var active int
		var createdAt sql.NullInt64

		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Active = intToBool(active)
		if createdAt.Valid {
			c.CreatedAt = unixToTime(createdAt.Int64)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// Helper functions for boolean<->int conversion (SQLite doesn't have BOOLEAN type)
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

// Helper to convert Unix timestamp to time.Time
func unixToTime(unix int64) time.Time {
	return time.Unix(unix, 0)
}
