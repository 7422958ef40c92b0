// Package opml provides OPML import and export for the RSS ingest
// source list.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/portalhq/portal-cli/model"
)

// OPML represents the root OPML structure.
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

// Head contains metadata about the OPML document.
type Head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

// Body contains the outline elements (sources).
type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline represents a source or category in OPML.
type Outline struct {
	Text     string    `xml:"text,attr,omitempty"`
	Title    string    `xml:"title,attr,omitempty"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLUrl   string    `xml:"xmlUrl,attr,omitempty"`
	Category string    `xml:"category,attr,omitempty"`
	Outlines []Outline `xml:"outline,omitempty"`
}

// Parse reads an OPML document and extracts ingest sources.
func Parse(r io.Reader) ([]*model.Source, error) {
	var opml OPML
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&opml); err != nil {
		return nil, fmt.Errorf("failed to parse OPML: %w", err)
	}

	return extractSources(opml.Body.Outlines, ""), nil
}

// extractSources recursively extracts sources from outlines.
// parentCategory is used for nested outlines that don't specify their own category.
func extractSources(outlines []Outline, parentCategory string) []*model.Source {
	var sources []*model.Source

	for _, outline := range outlines {
		// An outline with an xmlUrl is a source
		if outline.XMLUrl != "" {
			src := &model.Source{
				URL:   outline.XMLUrl,
				Title: outline.Title,
			}

			// Use explicit category if provided, otherwise inherit from parent
			if outline.Category != "" {
				src.Category = outline.Category
			} else if parentCategory != "" {
				src.Category = parentCategory
			}

			// Fallback to text if title is empty
			if src.Title == "" {
				src.Title = outline.Text
			}

			sources = append(sources, src)
		}

		// Recursively process nested outlines
		if len(outline.Outlines) > 0 {
			categoryForChildren := outline.Text
			if categoryForChildren == "" {
				categoryForChildren = parentCategory
			}

			childSources := extractSources(outline.Outlines, categoryForChildren)
			sources = append(sources, childSources...)
		}
	}

	return sources
}

// Generate writes an OPML document for a list of ingest sources.
func Generate(w io.Writer, sources []*model.Source) error {
	// Group sources by category
	categories := make(map[string][]*model.Source)
	var uncategorized []*model.Source

	for _, src := range sources {
		if src.Category == "" {
			uncategorized = append(uncategorized, src)
		} else {
			categories[src.Category] = append(categories[src.Category], src)
		}
	}

	opml := OPML{
		Version: "2.0",
		Head: Head{
			Title:       "portal-cli Ingest Sources",
			DateCreated: time.Now().Format(time.RFC1123),
		},
		Body: Body{
			Outlines: []Outline{},
		},
	}

	for category, categorySources := range categories {
		categoryOutline := Outline{
			Text:     category,
			Title:    category,
			Outlines: []Outline{},
		}

		for _, src := range categorySources {
			categoryOutline.Outlines = append(categoryOutline.Outlines, Outline{
				Type:     "rss",
				Text:     src.Title,
				Title:    src.Title,
				XMLUrl:   src.URL,
				Category: src.Category,
			})
		}

		opml.Body.Outlines = append(opml.Body.Outlines, categoryOutline)
	}

	for _, src := range uncategorized {
		opml.Body.Outlines = append(opml.Body.Outlines, Outline{
			Type:   "rss",
			Text:   src.Title,
			Title:  src.Title,
			XMLUrl: src.URL,
		})
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	if err := encoder.Encode(opml); err != nil {
		return fmt.Errorf("failed to encode OPML: %w", err)
	}

	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write final newline: %w", err)
	}

	return nil
}
