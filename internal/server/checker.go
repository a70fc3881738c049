package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shivansh-labs/namegate/internal/analyser"
	"github.com/shivansh-labs/namegate/internal/model"
	"github.com/shivansh-labs/namegate/internal/portal"
	"github.com/shivansh-labs/namegate/internal/webdriver"
)

// Checker runs one name through the availability check.
type Checker interface {
	Check(ctx context.Context, name string, checkType model.CheckType) (*model.CheckResult, error)
}

// BrowserChecker drives a real browser session per check.
type BrowserChecker struct {
	Driver        *webdriver.Client
	Profile       *portal.Profile
	Adviser       analyser.Adviser
	Logger        *slog.Logger
	ScreenshotDir string
}

// Check opens a fresh session, fills the form, scrapes the result tabs
// and analyses them. The session is always torn down, success or not;
// one check never leaks a browser.
func (b *BrowserChecker) Check(ctx context.Context, name string, checkType model.CheckType) (*model.CheckResult, error) {
	b.Logger.Info("starting browser session", "name", name)
	session, err := b.Driver.NewSession(ctx, webdriver.FirefoxCapabilities(true, ""))
	if err != nil {
		return nil, fmt.Errorf("starting browser session: %w", err)
	}
	defer func() {
		if derr := session.Delete(context.WithoutCancel(ctx)); derr != nil {
			b.Logger.Warn("failed to close browser session", "error", derr)
		} else {
			b.Logger.Info("browser session closed")
		}
	}()

	flow := portal.NewFlow(session, b.Profile, b.Logger, b.ScreenshotDir)
	if err := flow.Run(ctx, name); err != nil {
		return nil, err
	}

	scraped := flow.ScrapeTabs(ctx)
	if scraped.Empty() {
		return nil, fmt.Errorf("scraping returned no usable data from the portal")
	}

	a := analyser.New(analyser.FromScrape(scraped), b.Logger)
	result, err := a.Analyse(ctx, checkType, b.Adviser)
	if err != nil {
		return nil, err
	}
	return analyser.FilterSuggestions([]string{name}, result), nil
}
