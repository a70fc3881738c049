package analyser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shivansh-labs/namegate/internal/model"
)

// contextLimit truncates similar-name and trademark lists handed to the
// adviser, keeping the prompt small.
const contextLimit = 20

// Row is one conflict table row. On the wire it is either a positional
// cell list ([severity, name, message, ...]) or an object with severity
// and message fields; both decode into the same struct.
type Row struct {
	Severity string
	Message  string
	Cells    []string
}

// UnmarshalJSON accepts both row shapes.
func (r *Row) UnmarshalJSON(data []byte) error {
	var cells []any
	if err := json.Unmarshal(data, &cells); err == nil {
		r.Cells = make([]string, 0, len(cells))
		for _, c := range cells {
			r.Cells = append(r.Cells, stringify(c))
		}
		if len(r.Cells) > 0 {
			r.Severity = r.Cells[0]
		}
		if len(r.Cells) > 2 {
			r.Message = r.Cells[2]
		}
		return nil
	}

	var obj struct {
		Severity string `json:"severity"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("conflict row is neither a list nor an object: %w", err)
	}
	r.Severity = obj.Severity
	r.Message = obj.Message
	return nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Input is the conflict data under analysis.
type Input struct {
	Errors         []Row      `json:"error"`
	ErrorList      []Row      `json:"error_list"`
	NameSimilarity [][]string `json:"name_similarity"`
	Trademark      [][]string `json:"trademark"`
}

// errorRows prefers the error key, falling back to the legacy
// error_list key some callers still send.
func (in *Input) errorRows() []Row {
	if in.Errors != nil {
		return in.Errors
	}
	return in.ErrorList
}

// FromScrape converts a browser scrape into analyser input. Nil tab
// slices stay nil, meaning the tab was unavailable rather than empty.
func FromScrape(s *model.ScrapeResult) *Input {
	in := &Input{
		NameSimilarity: s.NameSimilarity,
		Trademark:      s.Trademark,
	}
	if s.Errors != nil {
		in.Errors = make([]Row, 0, len(s.Errors))
		for _, cells := range s.Errors {
			row := Row{Cells: cells}
			if len(cells) > 0 {
				row.Severity = cells[0]
			}
			if len(cells) > 2 {
				row.Message = cells[2]
			}
			in.Errors = append(in.Errors, row)
		}
	}
	return in
}

// Advice is the adviser's condensed output.
type Advice struct {
	SummarizedConflicts []string
	RecommendedNames    []model.Suggestion
}

// Context is the compact conflict context handed to the adviser.
type Context struct {
	BaseName       string
	CheckType      model.CheckType
	SimilarNames   []string
	TrademarkWords []string
}

// Adviser condenses blocking conflicts and proposes alternative names.
type Adviser interface {
	Advise(ctx context.Context, c Context, rawMessages []string) (Advice, error)
}

// Analyser evaluates one Input.
type Analyser struct {
	in     *Input
	logger *slog.Logger
}

// New wraps conflict data for analysis.
func New(in *Input, logger *slog.Logger) *Analyser {
	return &Analyser{in: in, logger: logger}
}

// BaseName infers the proposed name from the first similarity row, or
// from the second cell of the first error row in the legacy layout.
func (a *Analyser) BaseName() string {
	if len(a.in.NameSimilarity) > 0 && len(a.in.NameSimilarity[0]) > 0 {
		return a.in.NameSimilarity[0][0]
	}
	if rows := a.in.errorRows(); len(rows) > 0 && len(rows[0].Cells) > 1 {
		return rows[0].Cells[1]
	}
	return "Unknown"
}

// HasBlockingError reports whether any error row carries a severity
// outside info and success. A missing severity defaults to info.
func (a *Analyser) HasBlockingError() bool {
	for _, row := range a.in.errorRows() {
		severity := strings.ToLower(row.Severity)
		if severity == "" {
			severity = "info"
		}
		if severity != "info" && severity != "success" {
			return true
		}
	}
	return false
}

// RawBlockingMessages collects every row message verbatim.
func (a *Analyser) RawBlockingMessages() []string {
	var messages []string
	for _, row := range a.in.errorRows() {
		if row.Message != "" {
			messages = append(messages, row.Message)
		}
	}
	return messages
}

// SimilarNames lists the first cell of each similarity row.
func (a *Analyser) SimilarNames() []string {
	var names []string
	for _, row := range a.in.NameSimilarity {
		if len(row) > 0 {
			names = append(names, row[0])
		}
	}
	return names
}

// TrademarkWords lists the first cell of each trademark row.
func (a *Analyser) TrademarkWords() []string {
	var words []string
	for _, row := range a.in.Trademark {
		if len(row) > 0 {
			words = append(words, row[0])
		}
	}
	return words
}

// Analyse produces the verdict. Non-blocking input yields VALID with no
// further work; blocking input is condensed and sent to the adviser.
// An adviser failure degrades to the raw blocking messages so the
// caller still gets a usable NOT VALID result.
func (a *Analyser) Analyse(ctx context.Context, checkType model.CheckType, adviser Adviser) (*model.CheckResult, error) {
	if !a.HasBlockingError() {
		return &model.CheckResult{
			Verdict:          model.VerdictValid,
			BlockingMessages: []string{},
			RecommendedNames: []model.Suggestion{},
		}, nil
	}

	raw := a.RawBlockingMessages()
	c := Context{
		BaseName:       a.BaseName(),
		CheckType:      checkType,
		SimilarNames:   truncate(a.SimilarNames(), contextLimit),
		TrademarkWords: truncate(a.TrademarkWords(), contextLimit),
	}

	advice, err := adviser.Advise(ctx, c, raw)
	if err != nil {
		a.logger.Error("adviser failed, returning raw conflicts", "error", err)
		return &model.CheckResult{
			Verdict:          model.VerdictNotValid,
			BlockingMessages: raw,
			RecommendedNames: []model.Suggestion{},
		}, nil
	}

	return &model.CheckResult{
		Verdict:          model.VerdictNotValid,
		BlockingMessages: advice.SummarizedConflicts,
		RecommendedNames: advice.RecommendedNames,
	}, nil
}

func truncate(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
