package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/civicpulse-api/internal/config"
	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
)

func newTestServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestClient(url string) *Client {
	return NewClient(config.AIConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
	})
}

func TestCategorizeIssue(t *testing.T) {
	srv := newTestServer(t, `{"category": "Roads & Transport", "priority": "high", "tags": ["pothole"], "confidence": 0.92}`)
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.CategorizeIssue(context.Background(), "Huge pothole", "Deep pothole on Elm St", []string{"Roads & Transport", "Other"})
	require.NoError(t, err)

	assert.Equal(t, "Roads & Transport", result.Category)
	assert.Equal(t, "high", result.Priority)
	assert.Equal(t, []string{"pothole"}, result.Tags)
	assert.InDelta(t, 0.92, result.Confidence, 0.001)
}

func TestCategorizeIssueWithCodeFence(t *testing.T) {
	srv := newTestServer(t, "```json\n{\"category\": \"Sanitation\", \"priority\": \"low\", \"tags\": [], \"confidence\": 0.5}\n```")
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.CategorizeIssue(context.Background(), "Trash", "Overflowing bin", []string{"Sanitation"})
	require.NoError(t, err)

	assert.Equal(t, "Sanitation", result.Category)
}

func TestModerateContent(t *testing.T) {
	srv := newTestServer(t, `{"is_appropriate": false, "reason": "personal attack", "suggested_edit": "Please focus on the issue."}`)
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.ModerateContent(context.Background(), "some hostile comment")
	require.NoError(t, err)

	assert.False(t, result.IsAppropriate)
	assert.Equal(t, "personal attack", result.Reason)
}

func TestSuggestSolutionsCapsAtFive(t *testing.T) {
	srv := newTestServer(t, `{"suggestions": ["a", "b", "c", "d", "e", "f", "g"]}`)
	defer srv.Close()

	client := newTestClient(srv.URL)
	suggestions, err := client.SuggestSolutions(context.Background(), &issue.Issue{Title: "Broken light"})
	require.NoError(t, err)

	assert.Len(t, suggestions, 5)
}

func TestDisabledClient(t *testing.T) {
	client := NewClient(config.AIConfig{BaseURL: "http://localhost:1", Model: "test-model"})

	assert.False(t, client.Enabled())

	_, err := client.ModerateContent(context.Background(), "text")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestUpstreamErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.ModerateContent(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}
