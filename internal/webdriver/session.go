package webdriver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// elementKey is the W3C web element identifier key used in element
// reference objects on the wire.
const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// Locator pairs a W3C location strategy with its selector value.
type Locator struct {
	Strategy string `json:"using"`
	Value    string `json:"value"`
}

// String renders the locator for logs and error messages.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
}

// ByCSS locates by CSS selector.
func ByCSS(selector string) Locator {
	return Locator{Strategy: "css selector", Value: selector}
}

// ByXPath locates by XPath expression.
func ByXPath(expr string) Locator {
	return Locator{Strategy: "xpath", Value: expr}
}

// ByID locates by element id. W3C dropped the dedicated id strategy, so
// this translates to a CSS attribute selector, which tolerates the long
// generated ids the portal uses without CSS identifier escaping.
func ByID(id string) Locator {
	return ByCSS(fmt.Sprintf("[id=%q]", id))
}

// ByClass locates by a single class name.
func ByClass(name string) Locator {
	return ByCSS("." + name)
}

// Session is a live browser session.
type Session struct {
	client *Client
	id     string
}

// ID returns the driver-assigned session id.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) path(suffix string) string {
	return "/session/" + s.id + suffix
}

// Delete ends the session and closes the browser.
func (s *Session) Delete(ctx context.Context) error {
	return s.client.do(ctx, http.MethodDelete, s.path(""), nil, nil)
}

// Navigate loads the given URL and blocks until the document is ready
// per the driver's page-load strategy.
func (s *Session) Navigate(ctx context.Context, url string) error {
	body := map[string]string{"url": url}
	if err := s.client.do(ctx, http.MethodPost, s.path("/url"), body, nil); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// elementRef is the wire representation of an element reference.
type elementRef map[string]string

// FindElement locates the first element matching the locator.
// Returns an error wrapping ErrNoSuchElement when nothing matches.
func (s *Session) FindElement(ctx context.Context, loc Locator) (*Element, error) {
	var ref elementRef
	if err := s.client.do(ctx, http.MethodPost, s.path("/element"), loc, &ref); err != nil {
		return nil, fmt.Errorf("finding element %s: %w", loc, err)
	}
	id, ok := ref[elementKey]
	if !ok {
		return nil, fmt.Errorf("finding element %s: malformed element reference", loc)
	}
	return &Element{session: s, id: id}, nil
}

// FindElements locates all elements matching the locator. An empty
// result is not an error.
func (s *Session) FindElements(ctx context.Context, loc Locator) ([]*Element, error) {
	var refs []elementRef
	if err := s.client.do(ctx, http.MethodPost, s.path("/elements"), loc, &refs); err != nil {
		return nil, fmt.Errorf("finding elements %s: %w", loc, err)
	}
	elements := make([]*Element, 0, len(refs))
	for _, ref := range refs {
		if id, ok := ref[elementKey]; ok {
			elements = append(elements, &Element{session: s, id: id})
		}
	}
	return elements, nil
}

// ExecuteScript runs a synchronous script in the page and decodes its
// return value into out (pass nil to discard). Element arguments must be
// passed as element references; plain JSON values pass through as-is.
func (s *Session) ExecuteScript(ctx context.Context, script string, args []any, out any) error {
	if args == nil {
		args = []any{}
	}
	body := map[string]any{"script": script, "args": args}
	return s.client.do(ctx, http.MethodPost, s.path("/execute/sync"), body, out)
}

// Screenshot captures the viewport as PNG bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var encoded string
	if err := s.client.do(ctx, http.MethodGet, s.path("/screenshot"), nil, &encoded); err != nil {
		return nil, err
	}
	// Some drivers emit URL-safe base64; normalize before decoding.
	encoded = strings.ReplaceAll(strings.ReplaceAll(encoded, "-", "+"), "_", "/")
	return base64.StdEncoding.DecodeString(encoded)
}

// PageSource returns the serialized DOM of the current page.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	var source string
	err := s.client.do(ctx, http.MethodGet, s.path("/source"), nil, &source)
	return source, err
}

// Element is a handle to a located DOM element.
type Element struct {
	session *Session
	id      string
}

// Ref returns the wire representation of the element, suitable as an
// argument to ExecuteScript.
func (e *Element) Ref() map[string]string {
	return map[string]string{elementKey: e.id}
}

func (e *Element) path(suffix string) string {
	return e.session.path("/element/" + e.id + suffix)
}

// Click clicks the element. The driver scrolls it into view first and
// fails with "element not interactable" or "element click intercepted"
// when an overlay blocks it.
func (e *Element) Click(ctx context.Context) error {
	return e.session.client.do(ctx, http.MethodPost, e.path("/click"), nil, nil)
}

// SendKeys types text into the element.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	body := map[string]string{"text": text}
	return e.session.client.do(ctx, http.MethodPost, e.path("/value"), body, nil)
}

// Clear resets the element's value.
func (e *Element) Clear(ctx context.Context) error {
	return e.session.client.do(ctx, http.MethodPost, e.path("/clear"), nil, nil)
}

// Text returns the element's rendered text.
func (e *Element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.session.client.do(ctx, http.MethodGet, e.path("/text"), nil, &text)
	return text, err
}

// Attribute returns the named attribute, empty when absent.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	var raw json.RawMessage
	if err := e.session.client.do(ctx, http.MethodGet, e.path("/attribute/"+name), nil, &raw); err != nil {
		return "", err
	}
	// Absent attributes come back as JSON null.
	if string(raw) == "null" {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	return value, nil
}

// Property returns the named DOM property as a string. Unlike Attribute,
// this reflects live state such as an input's current value.
func (e *Element) Property(ctx context.Context, name string) (string, error) {
	var raw json.RawMessage
	if err := e.session.client.do(ctx, http.MethodGet, e.path("/property/"+name), nil, &raw); err != nil {
		return "", err
	}
	if string(raw) == "null" {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		// Non-string properties (numbers, booleans) render as raw JSON.
		return string(raw), nil
	}
	return value, nil
}

// Selected reports whether a checkbox, radio, or option is selected.
func (e *Element) Selected(ctx context.Context) (bool, error) {
	var selected bool
	err := e.session.client.do(ctx, http.MethodGet, e.path("/selected"), nil, &selected)
	return selected, err
}

// Enabled reports whether the element accepts interaction.
func (e *Element) Enabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := e.session.client.do(ctx, http.MethodGet, e.path("/enabled"), nil, &enabled)
	return enabled, err
}

// Displayed reports element visibility. The endpoint is a de-facto
// extension of the W3C spec that geckodriver and chromedriver both serve.
func (e *Element) Displayed(ctx context.Context) (bool, error) {
	var displayed bool
	err := e.session.client.do(ctx, http.MethodGet, e.path("/displayed"), nil, &displayed)
	return displayed, err
}

// FindElement locates a descendant of this element.
func (e *Element) FindElement(ctx context.Context, loc Locator) (*Element, error) {
	var ref elementRef
	if err := e.session.client.do(ctx, http.MethodPost, e.path("/element"), loc, &ref); err != nil {
		return nil, fmt.Errorf("finding element %s: %w", loc, err)
	}
	id, ok := ref[elementKey]
	if !ok {
		return nil, fmt.Errorf("finding element %s: malformed element reference", loc)
	}
	return &Element{session: e.session, id: id}, nil
}

// FindElements locates all matching descendants of this element.
func (e *Element) FindElements(ctx context.Context, loc Locator) ([]*Element, error) {
	var refs []elementRef
	if err := e.session.client.do(ctx, http.MethodPost, e.path("/elements"), loc, &refs); err != nil {
		return nil, fmt.Errorf("finding elements %s: %w", loc, err)
	}
	elements := make([]*Element, 0, len(refs))
	for _, ref := range refs {
		if id, ok := ref[elementKey]; ok {
			elements = append(elements, &Element{session: e.session, id: id})
		}
	}
	return elements, nil
}
