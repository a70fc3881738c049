package portal

import (
	"context"
	"time"

	"github.com/shivansh-labs/namegate/internal/model"
	"github.com/shivansh-labs/namegate/internal/webdriver"
)

// tab names one result tab and its table.
type tab struct {
	name     string
	tabLoc   string
	tableLoc string
}

var resultTabs = []tab{
	{"errors", "error_tab", "error_table"},
	{"name_similarity", "name_similarity_tab", "name_similarity_table"},
	{"trademark", "trademark_tab", "trademark_table"},
}

// ScrapeTabs collects the three result tables the auto-check populates.
// Each tab is scraped independently: a tab that fails to open or render
// leaves its slice nil, which downstream analysis treats as "tab not
// available" rather than "no rows".
func (f *Flow) ScrapeTabs(ctx context.Context) *model.ScrapeResult {
	result := &model.ScrapeResult{}
	for _, t := range resultTabs {
		rows, err := f.scrapeTab(ctx, t)
		if err != nil {
			f.logger.Warn("tab scrape failed", "tab", t.name, "error", err)
			webdriver.SaveScreenshotOnError(ctx, f.session, f.logger, f.screenshotDir, "scrape_"+t.name)
			continue
		}
		f.logger.Info("scraped tab", "tab", t.name, "rows", len(rows))
		switch t.name {
		case "errors":
			result.Errors = rows
		case "name_similarity":
			result.NameSimilarity = rows
		case "trademark":
			result.Trademark = rows
		}
	}
	return result
}

// scrapeTab clicks a tab open and reads its table into rows of cell
// text. An empty table yields an empty non-nil slice.
func (f *Flow) scrapeTab(ctx context.Context, t tab) ([][]string, error) {
	tabEl, err := f.session.WaitClickable(ctx, f.profile.Locator(t.tabLoc), f.profile.Timeout())
	if err != nil {
		return nil, err
	}
	if err := tabEl.Click(ctx); err != nil {
		// Tab headers sometimes sit under a sticky banner; retry the
		// click after scrolling the tab into view.
		if serr := f.session.ExecuteScript(ctx, "arguments[0].scrollIntoView(true);", []any{tabEl.Ref()}, nil); serr == nil {
			err = tabEl.Click(ctx)
		}
		if err != nil {
			return nil, err
		}
	}
	f.pause(ctx, 1*time.Second)

	table, err := f.session.WaitPresent(ctx, f.profile.Locator(t.tableLoc), f.profile.Timeout())
	if err != nil {
		return nil, err
	}

	trs, err := table.FindElements(ctx, webdriver.ByCSS("tr"))
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(trs))
	for _, tr := range trs {
		tds, err := tr.FindElements(ctx, webdriver.ByCSS("td"))
		if err != nil {
			f.logger.Debug("skipping unreadable row", "tab", t.name, "error", err)
			continue
		}
		// Header rows have th cells only.
		if len(tds) == 0 {
			continue
		}
		cells := make([]string, 0, len(tds))
		for _, td := range tds {
			text, err := td.Text(ctx)
			if err != nil {
				text = ""
			}
			cells = append(cells, text)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
