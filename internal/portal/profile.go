package portal

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/shivansh-labs/namegate/internal/model"
	"github.com/shivansh-labs/namegate/internal/webdriver"
)

//go:embed profile.jsonc
var defaultProfile []byte

// RawLocator is one locator entry in the profile file.
type RawLocator struct {
	// Strategy is one of "id", "css", "xpath", "class".
	Strategy string `json:"strategy"`
	Value    string `json:"value"`
}

// Profile is the parsed locator profile driving the automation flow.
type Profile struct {
	// FormURL is the name-check form address.
	FormURL string `json:"form_url"`

	// StatusGuardID is an element id expected in the raw page body when
	// the form is actually being served.
	StatusGuardID string `json:"status_guard_id"`

	// DefaultTimeoutSeconds bounds each element wait.
	DefaultTimeoutSeconds int `json:"default_timeout_seconds"`

	// NICCodes is the comma-separated list of activity codes to tick.
	NICCodes string `json:"nic_codes"`

	// Selections holds the fixed dropdown choices.
	Selections struct {
		CompanyType        string `json:"company_type"`
		CompanyClass       string `json:"company_class"`
		CompanyCategory    string `json:"company_category"`
		CompanySubcategory string `json:"company_subcategory"`
	} `json:"selections"`

	// Locators maps symbolic names to element locators.
	Locators map[string]RawLocator `json:"locators"`

	// NICCheckboxXPath is a format string producing the checkbox xpath
	// for one NIC code.
	NICCheckboxXPath string `json:"nic_checkbox_xpath"`
}

// requiredLocators is the set every profile must define for the flow to
// be runnable. Checked at load time so a truncated override fails fast
// instead of halfway through a browser session.
var requiredLocators = []string{
	"ok_button_popup", "modal_backdrop",
	"company_type_dropdown", "company_class_dropdown",
	"company_category_dropdown", "company_subcategory_dropdown",
	"nic_button", "nic_search_bar", "nic_page_size_dropdown", "nic_add_button",
	"company_name_input", "auto_check_button",
	"error_tab", "name_similarity_tab", "trademark_tab",
	"error_table", "name_similarity_table", "trademark_table",
}

// LoadProfile reads a JSONC profile from path, or the embedded default
// when path is empty. Comments are stripped with tidwall/jsonc before
// parsing with encoding/json.
func LoadProfile(path string) (*Profile, error) {
	raw := defaultProfile
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to read portal profile %q", path), err)
		}
	}

	var p Profile
	if err := json.Unmarshal(jsonc.ToJSON(raw), &p); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			"failed to parse portal profile", err)
	}

	if err := p.validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			"invalid portal profile", err)
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if p.FormURL == "" {
		return fmt.Errorf("form_url must not be empty")
	}
	if p.DefaultTimeoutSeconds <= 0 {
		p.DefaultTimeoutSeconds = 15
	}
	for _, name := range requiredLocators {
		loc, ok := p.Locators[name]
		if !ok {
			return fmt.Errorf("missing locator %q", name)
		}
		if _, err := toLocator(loc); err != nil {
			return fmt.Errorf("locator %q: %w", name, err)
		}
	}
	if p.NICCheckboxXPath == "" {
		return fmt.Errorf("nic_checkbox_xpath must not be empty")
	}
	return nil
}

// Timeout returns the per-step wait deadline.
func (p *Profile) Timeout() time.Duration {
	return time.Duration(p.DefaultTimeoutSeconds) * time.Second
}

// Locator resolves a symbolic locator name. Panics on unknown names —
// validate guarantees every required name resolves, so a miss here is a
// programming error, not bad input.
func (p *Profile) Locator(name string) webdriver.Locator {
	raw, ok := p.Locators[name]
	if !ok {
		panic(fmt.Sprintf("portal: unknown locator %q", name))
	}
	loc, err := toLocator(raw)
	if err != nil {
		panic(fmt.Sprintf("portal: locator %q: %v", name, err))
	}
	return loc
}

// NICCodeList splits the configured NIC codes, dropping blanks.
func (p *Profile) NICCodeList() []string {
	var codes []string
	for _, code := range strings.Split(p.NICCodes, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func toLocator(raw RawLocator) (webdriver.Locator, error) {
	if raw.Value == "" {
		return webdriver.Locator{}, fmt.Errorf("empty locator value")
	}
	switch raw.Strategy {
	case "id":
		return webdriver.ByID(raw.Value), nil
	case "css":
		return webdriver.ByCSS(raw.Value), nil
	case "xpath":
		return webdriver.ByXPath(raw.Value), nil
	case "class":
		return webdriver.ByClass(raw.Value), nil
	default:
		return webdriver.Locator{}, fmt.Errorf("unknown strategy %q", raw.Strategy)
	}
}
