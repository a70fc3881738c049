package webdriver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DefaultTimeout is the element wait deadline used by the automation
// flow unless a step overrides it.
const DefaultTimeout = 15 * time.Second

// pollInterval paces the wait loops. Half a second matches the cadence
// the portal's own scripts re-render at; polling faster just burns
// driver round trips.
const pollInterval = 500 * time.Millisecond

// WaitPresent polls until an element matching the locator exists in the
// DOM, returning it, or fails with ErrTimeout once the deadline passes.
// Stale references and transient lookup failures are retried.
func (s *Session) WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) (*Element, error) {
	return s.waitFor(ctx, loc, timeout, func(ctx context.Context, el *Element) (bool, error) {
		return true, nil
	})
}

// WaitClickable polls until an element matching the locator is displayed
// and enabled. This mirrors the "clickable" condition the original flow
// gates every interaction on.
func (s *Session) WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) (*Element, error) {
	return s.waitFor(ctx, loc, timeout, func(ctx context.Context, el *Element) (bool, error) {
		displayed, err := el.Displayed(ctx)
		if err != nil || !displayed {
			return false, err
		}
		return el.Enabled(ctx)
	})
}

// WaitGone polls until no element matches the locator (or none are
// displayed), used for modal backdrops that must clear before the form
// behind them accepts input.
func (s *Session) WaitGone(ctx context.Context, loc Locator, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		elements, err := s.FindElements(ctx, loc)
		if err == nil {
			visible := false
			for _, el := range elements {
				if displayed, derr := el.Displayed(ctx); derr == nil && displayed {
					visible = true
					break
				}
			}
			if !visible {
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("element %s still present after %s: %w", loc, timeout, ErrTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// waitFor is the shared polling loop: find the element, check the
// condition, retry on stale/missing until the deadline.
func (s *Session) waitFor(ctx context.Context, loc Locator, timeout time.Duration, cond func(context.Context, *Element) (bool, error)) (*Element, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)

	var lastErr error
	for {
		el, err := s.FindElement(ctx, loc)
		if err == nil {
			ok, cerr := cond(ctx, el)
			if cerr == nil && ok {
				return el, nil
			}
			lastErr = cerr
		} else {
			// Retryable failures: the element is not there yet or the
			// reference went stale mid-check. Anything else aborts.
			if !errors.Is(err, ErrNoSuchElement) && !errors.Is(err, ErrStaleElement) {
				return nil, err
			}
			lastErr = err
		}

		if time.Now().After(deadline) {
			if lastErr != nil {
				return nil, fmt.Errorf("waiting for %s: %w (last: %v)", loc, ErrTimeout, lastErr)
			}
			return nil, fmt.Errorf("waiting for %s: %w", loc, ErrTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// SaveScreenshotOnError captures the current viewport to
// <dir>/error_<step>_<timestamp>.png. Failures to capture or write are
// logged and swallowed; a missing screenshot must never mask the
// original automation error.
func SaveScreenshotOnError(ctx context.Context, s *Session, logger *slog.Logger, dir, step string) {
	if s == nil || dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create screenshot dir", "dir", dir, "error", err)
		return
	}

	png, err := s.Screenshot(ctx)
	if err != nil {
		logger.Error("failed to capture error screenshot", "step", step, "error", err)
		return
	}

	name := fmt.Sprintf("error_%s_%s.png", step, time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		logger.Error("failed to write error screenshot", "path", path, "error", err)
		return
	}
	logger.Error("saved error screenshot", "step", step, "path", path)
}
