package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// statusClient fetches the form page with browser-like headers. The
// portal's edge rejects requests that look like bots with a 403, so a
// plain GET is not a valid probe.
var statusClient = &http.Client{Timeout: 20 * time.Second}

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64; rv:131.0) Gecko/20100101 Firefox/131.0",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// StatusCheck reports whether the portal is serving the name-check
// form. A 200 response whose body carries the guard element id counts
// as up; anything else (including a maintenance page that still
// returns 200) counts as down with a reason.
func (p *Profile) StatusCheck(ctx context.Context) (bool, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.FormURL, nil)
	if err != nil {
		return false, "", err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := statusClient.Do(req)
	if err != nil {
		return false, "portal unreachable", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("portal returned HTTP %d", resp.StatusCode), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return false, "failed to read portal response", err
	}
	if p.StatusGuardID != "" && !strings.Contains(string(body), p.StatusGuardID) {
		return false, "portal is up but the name-check form is not being served", nil
	}
	return true, "", nil
}
