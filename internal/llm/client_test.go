package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivansh-labs/namegate/internal/analyser"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completionJSON(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

const goodContent = `{
	"summarized_conflicts": ["The name is too close to an existing registered company."],
	"recommended_names": [
		{"name": "Zenith Digital Works Private Limited", "reason": "distinct root word"},
		{"name": "Altura Tech Labs Private Limited", "reason": "no phonetic overlap"},
		{"name": "Kairos Ventures Private Limited", "reason": "unique branding"}
	]
}`

func testContext() analyser.Context {
	return analyser.Context{
		BaseName:     "ACME TECH PRIVATE LIMITED",
		CheckType:    "company",
		SimilarNames: []string{"ACME TECHNOLOGY PRIVATE LIMITED"},
	}
}

func TestAdviseFastModelSucceeds(t *testing.T) {
	// Arrange
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models = append(models, req.Model)

		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "ACME TECH PRIVATE LIMITED")

		io.WriteString(w, completionJSON(goodContent))
	}))
	defer srv.Close()

	client := New(Config{
		APIKey: "test-key", BaseURL: srv.URL,
		ModelFast: "fast-model", ModelSmart: "smart-model",
	}, discardLogger())

	// Act
	advice, err := client.Advise(context.Background(), testContext(), []string{"Name already exists"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"fast-model"}, models)
	assert.Len(t, advice.RecommendedNames, 3)
	assert.Equal(t, "Zenith Digital Works Private Limited", advice.RecommendedNames[0].Name)
	require.Len(t, advice.SummarizedConflicts, 1)
}

// TestAdviseRetriesOnSmartModel verifies the fast-model failure is
// retried once on the smart model.
func TestAdviseRetriesOnSmartModel(t *testing.T) {
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		models = append(models, req.Model)

		if req.Model == "fast-model" {
			io.WriteString(w, completionJSON("not json at all"))
			return
		}
		io.WriteString(w, completionJSON(goodContent))
	}))
	defer srv.Close()

	client := New(Config{
		APIKey: "test-key", BaseURL: srv.URL,
		ModelFast: "fast-model", ModelSmart: "smart-model",
	}, discardLogger())

	advice, err := client.Advise(context.Background(), testContext(), []string{"conflict"})

	require.NoError(t, err)
	assert.Equal(t, []string{"fast-model", "smart-model"}, models)
	assert.Len(t, advice.RecommendedNames, 3)
}

// TestAdviseRetriesWhenSuggestionCountOutOfBounds verifies a completion
// with too few suggestions is rejected like any other malformed output,
// so the smart model gets its attempt.
func TestAdviseRetriesWhenSuggestionCountOutOfBounds(t *testing.T) {
	// Arrange: the fast model answers with a single suggestion, below
	// the instructed minimum of three.
	oneSuggestion := `{
		"summarized_conflicts": ["conflict"],
		"recommended_names": [{"name": "Lone Option Private Limited", "reason": "only one"}]
	}`
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		models = append(models, req.Model)

		if req.Model == "fast-model" {
			io.WriteString(w, completionJSON(oneSuggestion))
			return
		}
		io.WriteString(w, completionJSON(goodContent))
	}))
	defer srv.Close()

	client := New(Config{
		APIKey: "test-key", BaseURL: srv.URL,
		ModelFast: "fast-model", ModelSmart: "smart-model",
	}, discardLogger())

	// Act
	advice, err := client.Advise(context.Background(), testContext(), []string{"conflict"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"fast-model", "smart-model"}, models)
	assert.Len(t, advice.RecommendedNames, 3)
	assert.NotEqual(t, "Lone Option Private Limited", advice.RecommendedNames[0].Name)
}

func TestCompleteRejectsTooManySuggestions(t *testing.T) {
	names := make([]map[string]string, 8)
	for i := range names {
		names[i] = map[string]string{"name": fmt.Sprintf("Option %d Private Limited", i), "reason": "r"}
	}
	content, _ := json.Marshal(map[string]any{
		"summarized_conflicts": []string{"conflict"},
		"recommended_names":    names,
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, completionJSON(string(content)))
	}))
	defer srv.Close()

	client := New(Config{APIKey: "k", BaseURL: srv.URL, ModelFast: "m"}, discardLogger())

	_, err := client.complete(context.Background(), "m", "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "8 name suggestions")
}

// TestAdviseFallsBackAfterAllAttempts verifies total upstream failure
// degrades to deterministic suggestions instead of an error.
func TestAdviseFallsBackAfterAllAttempts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": {"message": "overloaded", "type": "server_error"}}`)
	}))
	defer srv.Close()

	client := New(Config{
		APIKey: "test-key", BaseURL: srv.URL,
		ModelFast: "fast-model", ModelSmart: "smart-model",
	}, discardLogger())

	advice, err := client.Advise(context.Background(), testContext(), []string{"conflict"})

	require.NoError(t, err)
	assert.Equal(t, maxAttempts, calls)
	assert.Equal(t, []string{"Analysis failed. Please check the raw error messages."}, advice.SummarizedConflicts)
	assert.Len(t, advice.RecommendedNames, 5)
}

func TestAdviseWithoutAPIKeySkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without an API key")
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, ModelFast: "fast-model"}, discardLogger())

	advice, err := client.Advise(context.Background(), testContext(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"Could not connect to the analysis service."}, advice.SummarizedConflicts)
	assert.NotEmpty(t, advice.RecommendedNames)
}

func TestCompleteStripsMarkdownFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, completionJSON("```json\n"+goodContent+"\n```"))
	}))
	defer srv.Close()

	client := New(Config{APIKey: "k", BaseURL: srv.URL, ModelFast: "m"}, discardLogger())

	parsed, err := client.complete(context.Background(), "m", "prompt")

	require.NoError(t, err)
	assert.Len(t, parsed.RecommendedNames, 3)
}

func TestFallbackSuggestionBranches(t *testing.T) {
	tests := []struct {
		name     string
		baseName string
		contains string
	}{
		{"digital theme", "PRO DIGITAL SERVICES PRIVATE LIMITED", "Digital"},
		{"bharat theme", "NAYA BHARAT TRADING PRIVATE LIMITED", "Bharat"},
		{"generic uses key word", "ORCHID VENTURES PRIVATE LIMITED", "Orchid"},
		{"empty base name", "", "Business"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := FallbackSuggestions(tt.baseName)
			require.Len(t, suggestions, 5)
			assert.Contains(t, suggestions[0].Name, tt.contains)
			for _, s := range suggestions {
				assert.NotEmpty(t, s.Reason)
			}
		})
	}
}

func TestFallbackSkipsLegalSuffixWords(t *testing.T) {
	suggestions := FallbackSuggestions("PRIVATE LIMITED")
	require.Len(t, suggestions, 5)
	assert.Contains(t, suggestions[0].Name, "Business")
}
