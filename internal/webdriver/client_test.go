package webdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver is an httptest-backed WebDriver endpoint implementing just
// enough of the wire protocol for the client tests.
type fakeDriver struct {
	mux *http.ServeMux

	// elements maps CSS selector values to canned element behavior.
	elements map[string]*fakeElement

	navigated []string
}

type fakeElement struct {
	id        string
	text      string
	selected  bool
	displayed bool
	enabled   bool
	clicks    int
	value     string

	// appearAfter hides the element from find until the Nth attempt,
	// to exercise the wait loops.
	appearAfter int
	findCalls   int
}

func newFakeDriver() *fakeDriver {
	f := &fakeDriver{
		mux:      http.NewServeMux(),
		elements: map[string]*fakeElement{},
	}

	f.mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, map[string]any{"sessionId": "sess-1", "capabilities": map[string]any{}})
	})
	f.mux.HandleFunc("DELETE /session/sess-1", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, nil)
	})
	f.mux.HandleFunc("POST /session/sess-1/url", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.navigated = append(f.navigated, body.URL)
		writeValue(w, nil)
	})
	f.mux.HandleFunc("POST /session/sess-1/element", func(w http.ResponseWriter, r *http.Request) {
		var loc Locator
		_ = json.NewDecoder(r.Body).Decode(&loc)
		el, ok := f.elements[loc.Value]
		if ok {
			el.findCalls++
			ok = el.findCalls > el.appearAfter
		}
		if !ok {
			writeError(w, http.StatusNotFound, "no such element", "unable to locate "+loc.Value)
			return
		}
		writeValue(w, map[string]string{elementKey: el.id})
	})
	f.mux.HandleFunc("/session/sess-1/element/", func(w http.ResponseWriter, r *http.Request) {
		el := f.byID(pathElementID(r.URL.Path))
		if el == nil {
			writeError(w, http.StatusNotFound, "stale element reference", "element is stale")
			return
		}
		switch {
		case r.Method == http.MethodPost && hasSuffix(r.URL.Path, "/click"):
			el.clicks++
			writeValue(w, nil)
		case r.Method == http.MethodPost && hasSuffix(r.URL.Path, "/value"):
			var body struct {
				Text string `json:"text"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			el.value += body.Text
			writeValue(w, nil)
		case r.Method == http.MethodPost && hasSuffix(r.URL.Path, "/clear"):
			el.value = ""
			writeValue(w, nil)
		case hasSuffix(r.URL.Path, "/text"):
			writeValue(w, el.text)
		case hasSuffix(r.URL.Path, "/selected"):
			writeValue(w, el.selected)
		case hasSuffix(r.URL.Path, "/enabled"):
			writeValue(w, el.enabled)
		case hasSuffix(r.URL.Path, "/displayed"):
			writeValue(w, el.displayed)
		case hasSuffix(r.URL.Path, "/property/value"):
			writeValue(w, el.value)
		default:
			writeError(w, http.StatusNotFound, "unknown command", r.URL.Path)
		}
	})

	return f
}

func (f *fakeDriver) byID(id string) *fakeElement {
	for _, el := range f.elements {
		if el.id == id {
			return el
		}
	}
	return nil
}

func pathElementID(path string) string {
	// /session/sess-1/element/<id>/<command...>
	const prefix = "/session/sess-1/element/"
	rest := path[len(prefix):]
	for i := range rest {
		if rest[i] == '/' {
			return rest[:i]
		}
	}
	return rest
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func writeValue(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"value": value})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"value": map[string]string{"error": code, "message": message},
	})
}

func startSession(t *testing.T, f *fakeDriver) (*Session, func()) {
	t.Helper()
	srv := httptest.NewServer(f.mux)
	client := New(srv.URL)
	sess, err := client.NewSession(context.Background(), FirefoxCapabilities(true, ""))
	require.NoError(t, err)
	return sess, srv.Close
}

func TestNewSessionAndNavigate(t *testing.T) {
	f := newFakeDriver()
	sess, done := startSession(t, f)
	defer done()

	require.Equal(t, "sess-1", sess.ID())
	require.NoError(t, sess.Navigate(context.Background(), "https://portal.example/form"))
	assert.Equal(t, []string{"https://portal.example/form"}, f.navigated)
	assert.NoError(t, sess.Delete(context.Background()))
}

func TestFindElementAndInteract(t *testing.T) {
	f := newFakeDriver()
	f.elements["[id=\"okButton\"]"] = &fakeElement{id: "el-1", displayed: true, enabled: true}
	sess, done := startSession(t, f)
	defer done()
	ctx := context.Background()

	el, err := sess.FindElement(ctx, ByID("okButton"))
	require.NoError(t, err)

	require.NoError(t, el.Click(ctx))
	require.NoError(t, el.SendKeys(ctx, "ACME PRIVATE LIMITED"))

	value, err := el.Property(ctx, "value")
	require.NoError(t, err)
	assert.Equal(t, "ACME PRIVATE LIMITED", value)

	require.NoError(t, el.Clear(ctx))
	value, err = el.Property(ctx, "value")
	require.NoError(t, err)
	assert.Empty(t, value)

	assert.Equal(t, 1, f.elements["[id=\"okButton\"]"].clicks)
}

// TestFindElementMissing verifies the W3C error envelope maps onto the
// ErrNoSuchElement sentinel.
func TestFindElementMissing(t *testing.T) {
	f := newFakeDriver()
	sess, done := startSession(t, f)
	defer done()

	_, err := sess.FindElement(context.Background(), ByCSS("#ghost"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSuchElement), "expected ErrNoSuchElement, got %v", err)

	var derr *DriverError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "no such element", derr.Code)
	assert.Equal(t, http.StatusNotFound, derr.Status)
}

// TestWaitClickableEventually verifies the wait loop retries until the
// element shows up.
func TestWaitClickableEventually(t *testing.T) {
	f := newFakeDriver()
	f.elements["[id=\"slow\"]"] = &fakeElement{
		id: "el-2", displayed: true, enabled: true, appearAfter: 2,
	}
	sess, done := startSession(t, f)
	defer done()

	el, err := sess.WaitClickable(context.Background(), ByID("slow"), 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, el.Click(context.Background()))
}

// TestWaitPresentTimeout verifies a never-appearing element fails with
// ErrTimeout rather than ErrNoSuchElement.
func TestWaitPresentTimeout(t *testing.T) {
	f := newFakeDriver()
	sess, done := startSession(t, f)
	defer done()

	_, err := sess.WaitPresent(context.Background(), ByCSS("#never"), 700*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "expected ErrTimeout, got %v", err)
}

func TestDriverErrorUnwrap(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"no such element", ErrNoSuchElement},
		{"element not interactable", ErrNotInteractable},
		{"element click intercepted", ErrNotInteractable},
		{"timeout", ErrTimeout},
		{"stale element reference", ErrStaleElement},
		{"invalid session id", ErrSession},
	}
	for _, tt := range tests {
		err := fmt.Errorf("step failed: %w", &DriverError{Code: tt.code})
		assert.True(t, errors.Is(err, tt.want), "code %q should map to %v", tt.code, tt.want)
	}
}

func TestByIDSelector(t *testing.T) {
	loc := ByID("guideContainer-rootPanel-panel-guidebutton___widget")
	assert.Equal(t, "css selector", loc.Strategy)
	assert.Equal(t, `[id="guideContainer-rootPanel-panel-guidebutton___widget"]`, loc.Value)
}
