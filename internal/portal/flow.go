package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shivansh-labs/namegate/internal/model"
	"github.com/shivansh-labs/namegate/internal/webdriver"
)

// ErrStepFailed marks a failure in a defined automation step, as opposed
// to a transport or session error. The wrapped error keeps the driver
// sentinel so callers can still classify the root cause.
var ErrStepFailed = errors.New("automation step failed")

// settleDelay is the short pause after interactions that trigger the
// portal's own scripting (dropdown change handlers, dialog animations).
// Waiting on DOM state alone races the portal's re-render.
const settleDelay = 1 * time.Second

// removeBackdropScript clears any modal backdrop left behind by the
// entry dialog. The portal occasionally orphans one over the form.
const removeBackdropScript = `
var elements = document.getElementsByClassName('modal-backdrop');
while (elements.length > 0) { elements[0].parentNode.removeChild(elements[0]); }`

// Flow drives one name check through the portal form.
type Flow struct {
	session *webdriver.Session
	profile *Profile
	logger  *slog.Logger

	// screenshotDir receives a screenshot for every failed step;
	// empty disables capture.
	screenshotDir string

	// sleep implements the settle pauses; tests stub it out.
	sleep func(context.Context, time.Duration)
}

// NewFlow binds a browser session to a locator profile.
func NewFlow(session *webdriver.Session, profile *Profile, logger *slog.Logger, screenshotDir string) *Flow {
	return &Flow{
		session:       session,
		profile:       profile,
		logger:        logger,
		screenshotDir: screenshotDir,
		sleep:         sleepUnlessDone,
	}
}

// Run executes the complete check for one company name: open the form,
// dismiss the entry dialog, make the fixed selections, tick the NIC
// codes, enter the name, and trigger the auto-check. The scraped results
// are collected separately by ScrapeTabs.
func (f *Flow) Run(ctx context.Context, companyName string) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"open_form", f.OpenForm},
		{"dismiss_entry_dialog", f.DismissEntryDialog},
		{"select_company_type", func(ctx context.Context) error {
			return f.selectDropdown(ctx, "company_type_dropdown", f.profile.Selections.CompanyType, "company type")
		}},
		{"select_company_class", func(ctx context.Context) error {
			return f.selectDropdown(ctx, "company_class_dropdown", f.profile.Selections.CompanyClass, "company class")
		}},
		{"select_company_category", func(ctx context.Context) error {
			return f.selectDropdown(ctx, "company_category_dropdown", f.profile.Selections.CompanyCategory, "company category")
		}},
		{"select_company_subcategory", func(ctx context.Context) error {
			return f.selectDropdown(ctx, "company_subcategory_dropdown", f.profile.Selections.CompanySubcategory, "company sub-category")
		}},
		{"select_nic_codes", f.SelectNICCodes},
		{"enter_company_name", func(ctx context.Context) error {
			return f.EnterCompanyName(ctx, companyName)
		}},
		{"trigger_auto_check", f.TriggerAutoCheck},
	}

	for _, step := range steps {
		f.logger.Info("running portal step", "step", step.name)
		if err := step.fn(ctx); err != nil {
			webdriver.SaveScreenshotOnError(ctx, f.session, f.logger, f.screenshotDir, step.name)
			return fmt.Errorf("%w: %s: %w", ErrStepFailed, step.name, err)
		}
	}
	return nil
}

// OpenForm navigates to the name-check form.
func (f *Flow) OpenForm(ctx context.Context) error {
	return f.session.Navigate(ctx, f.profile.FormURL)
}

// DismissEntryDialog clicks the OK button of the dialog shown on page
// load and waits for the modal backdrop to clear before the form behind
// it accepts input.
func (f *Flow) DismissEntryDialog(ctx context.Context) error {
	el, err := f.session.WaitClickable(ctx, f.profile.Locator("ok_button_popup"), f.profile.Timeout())
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return err
	}
	if err := f.session.WaitGone(ctx, f.profile.Locator("modal_backdrop"), f.profile.Timeout()); err != nil {
		return err
	}
	f.pause(ctx, 2*time.Second)
	return nil
}

// selectDropdown picks an option from a native select. The option is
// clicked by matching value first, then visible text; if neither exists
// the value is forced with script and a change event, the portal's form
// runtime only reacting to the event either way.
func (f *Flow) selectDropdown(ctx context.Context, locatorName, option, stepName string) error {
	dropdown, err := f.session.WaitClickable(ctx, f.profile.Locator(locatorName), f.profile.Timeout())
	if err != nil {
		return fmt.Errorf("%s dropdown: %w", stepName, err)
	}

	// A leftover backdrop swallows clicks aimed at the select.
	if err := f.session.ExecuteScript(ctx, removeBackdropScript, nil, nil); err != nil {
		f.logger.Debug("backdrop removal script failed", "error", err)
	}
	if err := f.session.ExecuteScript(ctx, "arguments[0].scrollIntoView(true);", []any{dropdown.Ref()}, nil); err != nil {
		f.logger.Debug("scrollIntoView failed", "step", stepName, "error", err)
	}
	f.pause(ctx, settleDelay)

	byValue := webdriver.ByCSS(fmt.Sprintf("option[value=%q]", option))
	if opt, err := dropdown.FindElement(ctx, byValue); err == nil {
		if err := opt.Click(ctx); err == nil {
			f.pause(ctx, settleDelay)
			return nil
		}
	}

	byText := webdriver.ByXPath(fmt.Sprintf(".//option[normalize-space(text())=%q]", option))
	if opt, err := dropdown.FindElement(ctx, byText); err == nil {
		if err := opt.Click(ctx); err == nil {
			f.pause(ctx, settleDelay)
			return nil
		}
	}

	script := `arguments[0].value = arguments[1];
arguments[0].dispatchEvent(new Event('change', { 'bubbles': true }));`
	if err := f.session.ExecuteScript(ctx, script, []any{dropdown.Ref(), option}, nil); err != nil {
		return fmt.Errorf("%s: selecting %q: %w", stepName, option, err)
	}
	f.pause(ctx, settleDelay)
	return nil
}

// SelectNICCodes opens the NIC classification dialog, searches and ticks
// each configured code, then confirms with Add once at the end. A single
// failed code aborts the step.
func (f *Flow) SelectNICCodes(ctx context.Context) error {
	nic, err := f.session.WaitClickable(ctx, f.profile.Locator("nic_button"), f.profile.Timeout())
	if err != nil {
		return err
	}
	if err := nic.Click(ctx); err != nil {
		return err
	}
	f.pause(ctx, settleDelay)

	for _, code := range f.profile.NICCodeList() {
		f.logger.Info("selecting NIC code", "code", code)
		if err := f.tickNICCode(ctx, code); err != nil {
			return fmt.Errorf("NIC code %s: %w", code, err)
		}
	}

	add, err := f.session.WaitClickable(ctx, f.profile.Locator("nic_add_button"), f.profile.Timeout())
	if err != nil {
		return err
	}
	if err := add.Click(ctx); err != nil {
		return err
	}
	f.pause(ctx, settleDelay)
	return nil
}

func (f *Flow) tickNICCode(ctx context.Context, code string) error {
	search, err := f.session.WaitClickable(ctx, f.profile.Locator("nic_search_bar"), f.profile.Timeout())
	if err != nil {
		return err
	}
	if err := search.Clear(ctx); err != nil {
		return err
	}
	if err := search.SendKeys(ctx, code); err != nil {
		return err
	}
	// Let the results table refresh for the new search term.
	f.pause(ctx, 1500*time.Millisecond)

	// Widen the page size so the wanted row is on the visible page.
	if err := f.selectDropdown(ctx, "nic_page_size_dropdown", "100", "NIC page size"); err != nil {
		f.logger.Warn("NIC page size selection failed, continuing with default", "error", err)
	}

	checkbox := webdriver.ByXPath(fmt.Sprintf(f.profile.NICCheckboxXPath, code))
	box, err := f.session.WaitClickable(ctx, checkbox, f.profile.Timeout())
	if err != nil {
		return err
	}
	selected, err := box.Selected(ctx)
	if err != nil {
		return err
	}
	if !selected {
		if err := box.Click(ctx); err != nil {
			return err
		}
	}
	f.pause(ctx, 500*time.Millisecond)
	return nil
}

// EnterCompanyName types the formatted name into the input and verifies
// it landed; when the portal's input handlers drop characters the value
// is forced with script plus input/change events.
func (f *Flow) EnterCompanyName(ctx context.Context, companyName string) error {
	formatted := model.FormatCompanyName(companyName)
	f.logger.Info("entering company name", "name", formatted)

	input, err := f.session.WaitClickable(ctx, f.profile.Locator("company_name_input"), f.profile.Timeout())
	if err != nil {
		return err
	}
	if err := input.Click(ctx); err != nil {
		return err
	}
	if err := input.Clear(ctx); err != nil {
		return err
	}
	if err := input.SendKeys(ctx, formatted); err != nil {
		return err
	}

	entered, err := input.Property(ctx, "value")
	if err != nil {
		return err
	}
	if entered != formatted {
		f.logger.Warn("name verification failed, forcing value with script",
			"expected", formatted, "got", entered)
		script := `arguments[0].value = arguments[1];
arguments[0].dispatchEvent(new Event('input', { 'bubbles': true }));
arguments[0].dispatchEvent(new Event('change', { 'bubbles': true }));`
		if err := f.session.ExecuteScript(ctx, script, []any{input.Ref(), formatted}, nil); err != nil {
			return err
		}
	}
	f.pause(ctx, settleDelay)
	return nil
}

// TriggerAutoCheck clicks the auto-check button and allows the portal
// time to populate the result tabs. The form is never submitted; the
// check stops after the availability result is produced.
func (f *Flow) TriggerAutoCheck(ctx context.Context) error {
	btn, err := f.session.WaitClickable(ctx, f.profile.Locator("auto_check_button"), f.profile.Timeout())
	if err != nil {
		return err
	}
	if err := btn.Click(ctx); err != nil {
		return err
	}
	f.pause(ctx, 3*time.Second)
	return nil
}

// pause sleeps unless the context is done first.
func (f *Flow) pause(ctx context.Context, d time.Duration) {
	f.sleep(ctx, d)
}

func sleepUnlessDone(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
