package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalhq/portal-cli/model"
)

func TestClient_ArticleComments(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]*model.Comment{
			{ID: "c1", ArticleID: "a1", Author: "jane", Content: "Great read"},
			{ID: "c2", ArticleID: "a1", Content: "Agreed", Likes: 3},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	comments, err := c.ArticleComments(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "/comments/article/a1", gotPath)
	require.Len(t, comments, 2)
	assert.Equal(t, "Great read", comments[0].Content)
	assert.Equal(t, 3, comments[1].Likes)
}

func TestClient_CreateComment(t *testing.T) {
	var gotBody model.CommentDraft
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/comments", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(&model.Comment{
			ID:        "c1",
			ArticleID: gotBody.ArticleID,
			Content:   gotBody.Content,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	comment, err := c.CreateComment(context.Background(), &model.CommentDraft{
		ArticleID: "a1",
		Content:   "Great read",
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", gotBody.ArticleID)
	assert.Equal(t, "c1", comment.ID)
}

func TestClient_CreateComment_RejectsEmptyDraft(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateComment(context.Background(), &model.CommentDraft{ArticleID: "a1"})
	assert.Error(t, err, "A comment without content is rejected client-side")

	_, err = c.CreateComment(context.Background(), &model.CommentDraft{Content: "orphan"})
	assert.Error(t, err, "A comment without an article is rejected client-side")

	assert.Zero(t, requests, "Invalid drafts never reach the server")
}

func TestClient_DeleteComment(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.DeleteComment(context.Background(), "c1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/comments/c1", gotPath)
}

func TestClient_ArticleLikes(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]int{"count": 7})
	}))
	defer srv.Close()

	c := New(srv.URL)
	count, err := c.ArticleLikes(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "/likes/article/a1/count", gotPath)
	assert.Equal(t, 7, count)
}
