package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalhq/portal-cli/model"
)

func TestNewStore(t *testing.T) {
	// Test creating a new in-memory database
	s, err := New(":memory:")
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()
}

func TestStore_SaveAndGetArticle(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	publishDate := time.Now().Add(-time.Hour).Truncate(time.Second)
	article := &model.Article{
		ID:          "a1",
		Title:       "Local elections recap",
		Summary:     "What happened",
		Content:     "Full text",
		Category:    "politics",
		Author:      "jane",
		Status:      model.ArticleStatusPublished,
		Tags:        []string{"elections", "local"},
		PublishDate: &publishDate,
	}

	err = s.SaveArticle(article)
	require.NoError(t, err)

	got, err := s.GetArticle("a1")
	require.NoError(t, err)
	assert.Equal(t, article.Title, got.Title)
	assert.Equal(t, article.Category, got.Category)
	assert.Equal(t, article.Status, got.Status)
	assert.Equal(t, article.Tags, got.Tags)
	require.NotNil(t, got.PublishDate)
	assert.Equal(t, publishDate.Unix(), got.PublishDate.Unix())
}

func TestStore_SaveArticle_Upsert(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	article := &model.Article{
		ID:     "a1",
		Title:  "First title",
		Status: model.ArticleStatusDraft,
	}
	require.NoError(t, s.SaveArticle(article))

	// Saving the same ID again replaces the snapshot
	article.Title = "Updated title"
	article.Status = model.ArticleStatusPublished
	require.NoError(t, s.SaveArticle(article))

	got, err := s.GetArticle("a1")
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.Title)
	assert.Equal(t, model.ArticleStatusPublished, got.Status)

	all, err := s.GetArticles(QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1, "Upsert should not create a second row")
}

func TestStore_SaveArticle_RequiresID(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	err = s.SaveArticle(&model.Article{Title: "No ID"})
	assert.Error(t, err, "Should refuse an article without an ID")
}

func TestStore_GetArticle_NotFound(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetArticle("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetArticles_Pagination(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	baseTime := time.Now()
	for i := 0; i < 50; i++ {
		publishDate := baseTime.Add(-time.Duration(i) * time.Hour) // Older articles
		article := &model.Article{
			ID:          "a" + string(rune('a'+i)),
			Title:       "Article " + string(rune('a'+i)),
			Status:      model.ArticleStatusPublished,
			PublishDate: &publishDate,
		}
		require.NoError(t, s.SaveArticle(article))
	}

	// First page
	articles, err := s.GetArticles(QueryOptions{Limit: 10, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, articles, 10)

	// Second page
	articles2, err := s.GetArticles(QueryOptions{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Len(t, articles2, 10)
	assert.NotEqual(t, articles[0].ID, articles2[0].ID, "Offset should return different articles")

	// Last partial page
	articles3, err := s.GetArticles(QueryOptions{Limit: 10, Offset: 45})
	require.NoError(t, err)
	assert.Len(t, articles3, 5)
}

func TestStore_GetArticles_OffsetWithoutLimit(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	baseTime := time.Now()
	for i := 0; i < 5; i++ {
		publishDate := baseTime.Add(-time.Duration(i) * time.Hour)
		article := &model.Article{
			ID:          "a" + string(rune('a'+i)),
			Title:       "Article " + string(rune('a'+i)),
			Status:      model.ArticleStatusPublished,
			PublishDate: &publishDate,
		}
		require.NoError(t, s.SaveArticle(article))
	}

	// An offset with no limit skips rows but is otherwise unbounded
	articles, err := s.GetArticles(QueryOptions{Offset: 2})
	require.NoError(t, err)
	assert.Len(t, articles, 3)
	assert.Equal(t, "ac", articles[0].ID)
}

func TestStore_GetArticles_Ordering(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	older := time.Now().Add(-48 * time.Hour)
	newer := time.Now().Add(-1 * time.Hour)

	require.NoError(t, s.SaveArticle(&model.Article{ID: "old", Title: "Old", Status: model.ArticleStatusPublished, PublishDate: &older}))
	require.NoError(t, s.SaveArticle(&model.Article{ID: "new", Title: "New", Status: model.ArticleStatusPublished, PublishDate: &newer}))

	articles, err := s.GetArticles(QueryOptions{})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "new", articles[0].ID, "Newest publish date should come first")
}

func TestStore_GetArticles_Filters(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	now := time.Now()
	articles := []*model.Article{
		{ID: "a1", Title: "Council budget vote", Summary: "city hall", Category: "politics", Status: model.ArticleStatusPublished, PublishDate: &now},
		{ID: "a2", Title: "Stadium opening", Category: "sports", Status: model.ArticleStatusPublished, PublishDate: &now},
		{ID: "a3", Title: "Budget analysis", Category: "politics", Status: model.ArticleStatusDraft, PublishDate: &now},
	}
	for _, a := range articles {
		require.NoError(t, s.SaveArticle(a))
	}

	// Category filter
	politics, err := s.GetArticles(QueryOptions{Category: "politics"})
	require.NoError(t, err)
	assert.Len(t, politics, 2)

	// Status filter
	drafts, err := s.GetArticles(QueryOptions{Status: model.ArticleStatusDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "a3", drafts[0].ID)

	// Search matches title and summary
	budget, err := s.GetArticles(QueryOptions{Search: "budget"})
	require.NoError(t, err)
	assert.Len(t, budget, 2)

	hall, err := s.GetArticles(QueryOptions{Search: "city hall"})
	require.NoError(t, err)
	assert.Len(t, hall, 1)

	// Combined
	got, err := s.GetArticles(QueryOptions{Category: "politics", Status: model.ArticleStatusPublished})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestStore_GetArticles_Since(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	recent := time.Now().Add(-2 * 24 * time.Hour)
	ancient := time.Now().Add(-30 * 24 * time.Hour)

	require.NoError(t, s.SaveArticle(&model.Article{ID: "recent", Title: "Recent", Status: model.ArticleStatusPublished, PublishDate: &recent}))
	require.NoError(t, s.SaveArticle(&model.Article{ID: "ancient", Title: "Ancient", Status: model.ArticleStatusPublished, PublishDate: &ancient}))

	cutoff := time.Now().Add(-7 * 24 * time.Hour).Unix()
	got, err := s.GetArticles(QueryOptions{SinceTime: &cutoff})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "recent", got[0].ID)
}

func TestStore_DeleteArticle(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveArticle(&model.Article{ID: "a1", Title: "Doomed", Status: model.ArticleStatusDraft}))

	require.NoError(t, s.DeleteArticle("a1"))

	_, err = s.GetArticle("a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveAndGetCategories(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	categories := []*model.Category{
		{ID: "c1", Name: "politics", Active: true},
		{ID: "c2", Name: "sports", Active: false},
	}
	for _, c := range categories {
		require.NoError(t, s.SaveCategory(c))
	}

	// Upsert keeps a single row per ID
	categories[0].Description = "Local and national"
	require.NoError(t, s.SaveCategory(categories[0]))

	all, err := s.GetAllCategories()
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Ordered by name
	assert.Equal(t, "politics", all[0].Name)
	assert.Equal(t, "Local and national", all[0].Description)
	assert.True(t, all[0].Active)
	assert.False(t, all[1].Active)
}

func TestStore_Sources(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	src := &model.Source{
		URL:      "https://example.com/rss",
		Title:    "Example Wire",
		Category: "tech",
	}

	err = s.SaveSource(src)
	require.NoError(t, err)
	assert.NotZero(t, src.ID, "Source ID should be set after save")

	got, err := s.GetSource(src.ID)
	require.NoError(t, err)
	assert.Equal(t, src.URL, got.URL)
	assert.Equal(t, src.Title, got.Title)
	assert.Equal(t, src.Category, got.Category)

	// Update path
	src.Title = "Example Wire (updated)"
	require.NoError(t, s.SaveSource(src))

	got, err = s.GetSource(src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Example Wire (updated)", got.Title)

	all, err := s.GetAllSources()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteSource(src.ID))
	_, err = s.GetSource(src.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Sources_UniqueURL(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveSource(&model.Source{URL: "https://example.com/rss"}))

	duplicate := &model.Source{URL: "https://example.com/rss"}
	err = s.SaveSource(duplicate)
	assert.Error(t, err, "Should error on duplicate source URL")
}

func TestStore_IngestedItems(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	src := &model.Source{URL: "https://example.com/rss"}
	require.NoError(t, s.SaveSource(src))

	seen, err := s.IsIngested(src.ID, "guid-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkIngested(src.ID, "guid-1"))

	seen, err = s.IsIngested(src.ID, "guid-1")
	require.NoError(t, err)
	assert.True(t, seen)

	// Marking twice is fine
	require.NoError(t, s.MarkIngested(src.ID, "guid-1"))

	// A different source does not see the GUID
	other := &model.Source{URL: "https://other.example.com/rss"}
	require.NoError(t, s.SaveSource(other))

	seen, err = s.IsIngested(other.ID, "guid-1")
	require.NoError(t, err)
	assert.False(t, seen)
}
