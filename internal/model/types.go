package model

import (
	"fmt"
	"strings"
)

// CheckType selects which registry a proposed name is validated against.
type CheckType string

const (
	// CheckCompany validates against registered company names.
	CheckCompany CheckType = "company"

	// CheckTrademark validates against registered trademarks.
	CheckTrademark CheckType = "trademark"
)

// String returns the string representation of CheckType.
func (t CheckType) String() string {
	return string(t)
}

// IsValid checks whether the CheckType value is one of the
// predefined valid kinds.
func (t CheckType) IsValid() bool {
	switch t {
	case CheckCompany, CheckTrademark:
		return true
	default:
		return false
	}
}

// ParseCheckType converts a string to a CheckType.
// Returns an error if the string does not match any valid kind.
func ParseCheckType(s string) (CheckType, error) {
	t := CheckType(strings.ToLower(s))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid check type: %q (valid: company, trademark)", s)
	}
	return t, nil
}

// Verdict is the outcome of a name check.
type Verdict string

const (
	// VerdictValid means no blocking conflict was found and the name can
	// proceed to registration.
	VerdictValid Verdict = "VALID"

	// VerdictNotValid means at least one blocking conflict was found.
	// The result carries summarized conflicts and alternative names.
	VerdictNotValid Verdict = "NOT VALID"
)

// String returns the string representation of Verdict.
func (v Verdict) String() string {
	return string(v)
}

// IsValid checks whether the Verdict value is one of the predefined outcomes.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictValid, VerdictNotValid:
		return true
	default:
		return false
	}
}

// maxPayloadNames bounds how many candidate names a single check payload
// may carry. Matches the public API contract.
const maxPayloadNames = 50

// CheckPayload is the request body for a name check.
//
// Names holds candidate names to evaluate; the automation flow checks the
// first name against the portal, while the analysis-only endpoint uses the
// full list for deduplication context.
type CheckPayload struct {
	Names             []string  `json:"names"`
	CheckType         CheckType `json:"check_type"`
	PreferredLanguage string    `json:"preferred_language,omitempty"`
}

// Validate checks payload invariants: at least one name, at most
// maxPayloadNames, no blank names, and a known check type. A missing
// check type defaults to "company" and a missing language to "en",
// mirroring the permissive request model of the original API.
func (p *CheckPayload) Validate() error {
	if len(p.Names) == 0 {
		return fmt.Errorf("no names provided")
	}
	if len(p.Names) > maxPayloadNames {
		return fmt.Errorf("too many names: %d (max %d)", len(p.Names), maxPayloadNames)
	}
	for i, name := range p.Names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("name at index %d is empty or whitespace", i)
		}
	}
	if p.CheckType == "" {
		p.CheckType = CheckCompany
	}
	if !p.CheckType.IsValid() {
		return fmt.Errorf("invalid check type: %q (valid: company, trademark)", p.CheckType)
	}
	if p.PreferredLanguage == "" {
		p.PreferredLanguage = "en"
	}
	return nil
}

// Suggestion is one alternative name proposed when the checked name
// has blocking conflicts.
type Suggestion struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// CheckResult is the final outcome of a name check: the verdict plus,
// for blocked names, the summarized conflicts and recommended alternatives.
//
// Invariant: a VALID result has empty BlockingMessages and RecommendedNames.
type CheckResult struct {
	Verdict          Verdict      `json:"verdict"`
	BlockingMessages []string     `json:"blocking_messages"`
	RecommendedNames []Suggestion `json:"recommended_names"`
}

// ScrapeResult holds the raw rows scraped from the portal's three result
// tabs after an auto-check. Each table is a slice of rows, each row a slice
// of cell texts. A nil slice means the tab could not be scraped (the tab or
// its table never appeared), which is distinct from an empty table.
type ScrapeResult struct {
	Errors         [][]string `json:"error"`
	NameSimilarity [][]string `json:"name_similarity"`
	Trademark      [][]string `json:"trademark"`
}

// Empty reports whether nothing usable was scraped from any tab.
// Callers treat an empty scrape as an automation failure because a
// completed auto-check always populates at least the errors tab.
func (s *ScrapeResult) Empty() bool {
	return s == nil || (s.Errors == nil && s.NameSimilarity == nil && s.Trademark == nil)
}

// companySuffix is the legal suffix the portal expects on proposed
// private company names.
const companySuffix = "PRIVATE LIMITED"

// FormatCompanyName normalizes a proposed company name for portal entry:
// uppercase, with the "PRIVATE LIMITED" suffix appended when absent.
func FormatCompanyName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !strings.Contains(name, companySuffix) {
		name = name + " " + companySuffix
	}
	return name
}
