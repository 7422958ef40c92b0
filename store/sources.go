package store

import (
	"database/sql"
	"fmt"

	"github.com/portalhq/portal-cli/model"
)

// SaveSource saves an RSS ingest source.
// If the source has an ID of 0, it will be inserted. Otherwise, it
// will be updated.
func (s *Store) SaveSource(src *model.Source) error {
	if src.ID == 0 {
		result, err := s.db.Exec(
			"INSERT INTO sources (url, title, category, etag, last_modified) VALUES (?, ?, ?, ?, ?)",
			src.URL, src.Title, src.Category, src.ETag, src.LastModified,
		)
		if err != nil {
			return fmt.Errorf("failed to insert source: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		src.ID = id
		return nil
	}

	_, err := s.db.Exec(
		"UPDATE sources SET url = ?, title = ?, category = ?, etag = ?, last_modified = ? WHERE id = ?",
		src.URL, src.Title, src.Category, src.ETag, src.LastModified, src.ID,
	)
	return err
}

// GetSource retrieves a source by ID.
func (s *Store) GetSource(id int64) (*model.Source, error) {
	src := &model.Source{}
	err := s.db.QueryRow(
		"SELECT id, url, title, category, etag, last_modified FROM sources WHERE id = ?",
		id,
	).Scan(&src.ID, &src.URL, &src.Title, &src.Category, &src.ETag, &src.LastModified)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return src, nil
}

// GetAllSources retrieves all ingest sources.
func (s *Store) GetAllSources() ([]*model.Source, error) {
	rows, err := s.db.Query("SELECT id, url, title, category, etag, last_modified FROM sources")
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*model.Source
	for rows.Next() {
		src := &model.Source{}
		err := rows.Scan(&src.ID, &src.URL, &src.Title, &src.Category, &src.ETag, &src.LastModified)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, src)
	}

	return sources, rows.Err()
}

// DeleteSource deletes a source by ID.
func (s *Store) DeleteSource(id int64) error {
	_, err := s.db.Exec("DELETE FROM sources WHERE id = ?", id)
	return err
}

// MarkIngested records that an item GUID from a source was already
// submitted to the portal, so re-running ingest skips it.
func (s *Store) MarkIngested(sourceID int64, guid string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO ingested_items (source_id, guid) VALUES (?, ?)",
		sourceID, guid,
	)
	return err
}

// IsIngested reports whether an item GUID was already submitted.
func (s *Store) IsIngested(sourceID int64, guid string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(1) FROM ingested_items WHERE source_id = ? AND guid = ?",
		sourceID, guid,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check ingested item: %w", err)
	}
	return n > 0, nil
}
