package analyser

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivansh-labs/namegate/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubAdviser returns canned advice, recording what it was asked.
type stubAdviser struct {
	advice   Advice
	err      error
	gotCtx   Context
	gotRaw   []string
	callings int
}

func (s *stubAdviser) Advise(_ context.Context, c Context, raw []string) (Advice, error) {
	s.callings++
	s.gotCtx = c
	s.gotRaw = raw
	return s.advice, s.err
}

func TestRowUnmarshalListAndObject(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Row
	}{
		{
			name: "positional list",
			json: `["error", "ACME PRIVATE LIMITED", "Name already exists"]`,
			want: Row{
				Severity: "error",
				Message:  "Name already exists",
				Cells:    []string{"error", "ACME PRIVATE LIMITED", "Name already exists"},
			},
		},
		{
			name: "object row",
			json: `{"severity": "warning", "message": "Similar trademark found"}`,
			want: Row{Severity: "warning", Message: "Similar trademark found"},
		},
		{
			name: "short list",
			json: `["success"]`,
			want: Row{Severity: "success", Cells: []string{"success"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row Row
			require.NoError(t, json.Unmarshal([]byte(tt.json), &row))
			assert.Equal(t, tt.want, row)
		})
	}
}

func TestHasBlockingError(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
		want bool
	}{
		{"no rows", nil, false},
		{"info only", []Row{{Severity: "info"}, {Severity: "SUCCESS"}}, false},
		{"missing severity defaults to info", []Row{{}}, false},
		{"error row", []Row{{Severity: "info"}, {Severity: "error"}}, true},
		{"warning row", []Row{{Severity: "Warning"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(&Input{Errors: tt.rows}, discardLogger())
			assert.Equal(t, tt.want, a.HasBlockingError())
		})
	}
}

func TestErrorListFallback(t *testing.T) {
	// The legacy error_list key is honored only when error is absent.
	a := New(&Input{ErrorList: []Row{{Severity: "error"}}}, discardLogger())
	assert.True(t, a.HasBlockingError())

	a = New(&Input{
		Errors:    []Row{{Severity: "info"}},
		ErrorList: []Row{{Severity: "error"}},
	}, discardLogger())
	assert.False(t, a.HasBlockingError())
}

func TestBaseName(t *testing.T) {
	a := New(&Input{
		NameSimilarity: [][]string{{"ACME TECH PRIVATE LIMITED", "90%"}},
	}, discardLogger())
	assert.Equal(t, "ACME TECH PRIVATE LIMITED", a.BaseName())

	a = New(&Input{
		Errors: []Row{{Cells: []string{"error", "ACME PRIVATE LIMITED", "exists"}}},
	}, discardLogger())
	assert.Equal(t, "ACME PRIVATE LIMITED", a.BaseName())

	a = New(&Input{}, discardLogger())
	assert.Equal(t, "Unknown", a.BaseName())
}

func TestAnalyseValidShortCircuits(t *testing.T) {
	adviser := &stubAdviser{}
	a := New(&Input{Errors: []Row{{Severity: "success", Message: "ok"}}}, discardLogger())

	result, err := a.Analyse(context.Background(), model.CheckCompany, adviser)

	require.NoError(t, err)
	assert.Equal(t, model.VerdictValid, result.Verdict)
	assert.Empty(t, result.BlockingMessages)
	assert.Empty(t, result.RecommendedNames)
	assert.Zero(t, adviser.callings, "adviser must not run for valid names")
}

func TestAnalyseBlockingUsesAdvice(t *testing.T) {
	adviser := &stubAdviser{
		advice: Advice{
			SummarizedConflicts: []string{"Name conflicts with an existing company"},
			RecommendedNames: []model.Suggestion{
				{Name: "ACME DIGITAL VENTURES", Reason: "distinct modifier"},
			},
		},
	}
	a := New(&Input{
		Errors: []Row{
			{Severity: "error", Message: "Name already exists", Cells: []string{"error", "ACME", "Name already exists"}},
		},
		NameSimilarity: [][]string{{"ACME PRIVATE LIMITED", "95%"}},
		Trademark:      [][]string{{"ACME"}},
	}, discardLogger())

	result, err := a.Analyse(context.Background(), model.CheckCompany, adviser)

	require.NoError(t, err)
	assert.Equal(t, model.VerdictNotValid, result.Verdict)
	assert.Equal(t, adviser.advice.SummarizedConflicts, result.BlockingMessages)
	assert.Equal(t, adviser.advice.RecommendedNames, result.RecommendedNames)

	assert.Equal(t, "ACME PRIVATE LIMITED", adviser.gotCtx.BaseName)
	assert.Equal(t, []string{"Name already exists"}, adviser.gotRaw)
	assert.Equal(t, []string{"ACME"}, adviser.gotCtx.TrademarkWords)
}

func TestAnalyseAdviserFailureDegradesToRawMessages(t *testing.T) {
	adviser := &stubAdviser{err: errors.New("model unavailable")}
	a := New(&Input{
		Errors: []Row{{Severity: "error", Message: "Name already exists"}},
	}, discardLogger())

	result, err := a.Analyse(context.Background(), model.CheckCompany, adviser)

	require.NoError(t, err)
	assert.Equal(t, model.VerdictNotValid, result.Verdict)
	assert.Equal(t, []string{"Name already exists"}, result.BlockingMessages)
	assert.Empty(t, result.RecommendedNames)
}

func TestContextTruncation(t *testing.T) {
	var sim [][]string
	for i := 0; i < 30; i++ {
		sim = append(sim, []string{"SIMILAR NAME"})
	}
	adviser := &stubAdviser{}
	a := New(&Input{
		Errors:         []Row{{Severity: "error", Message: "conflict"}},
		NameSimilarity: sim,
	}, discardLogger())

	_, err := a.Analyse(context.Background(), model.CheckTrademark, adviser)

	require.NoError(t, err)
	assert.Len(t, adviser.gotCtx.SimilarNames, contextLimit)
	assert.Equal(t, model.CheckTrademark, adviser.gotCtx.CheckType)
}

func TestFromScrapePreservesNilTabs(t *testing.T) {
	in := FromScrape(&model.ScrapeResult{
		Errors: [][]string{{"error", "ACME", "exists"}},
	})
	assert.Nil(t, in.NameSimilarity)
	assert.Nil(t, in.Trademark)
	require.Len(t, in.Errors, 1)
	assert.Equal(t, "error", in.Errors[0].Severity)
	assert.Equal(t, "exists", in.Errors[0].Message)
}

func TestSimplifyNames(t *testing.T) {
	got := SimplifyNames([]string{"Acme Tech", "ACME TECH", "acme teck", "Zenith Labs"})
	assert.Equal(t, []string{"acme tech", "zenith labs"}, got)
}

func TestFilterSuggestions(t *testing.T) {
	result := &model.CheckResult{
		Verdict: model.VerdictNotValid,
		RecommendedNames: []model.Suggestion{
			{Name: "Acme Tech", Reason: "same as requested"},
			{Name: "Acme Digital Ventures", Reason: "fresh"},
		},
	}

	got := FilterSuggestions([]string{"ACME TECH"}, result)

	require.Len(t, got.RecommendedNames, 1)
	assert.Equal(t, "Acme Digital Ventures", got.RecommendedNames[0].Name)
}
