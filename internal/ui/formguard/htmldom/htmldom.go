// Package htmldom implements the formguard DOM seam on top of parsed HTML.
//
// Elements keep the state a browser would: typed values, selected files,
// focus and registered listeners. Submit and SelectFiles dispatch events the
// same way a user interaction would, which lets the guard run against the
// real page markup without a browser.
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Its-donkey/docshare/internal/ui/formguard"
)

// Document is a parsed page.
type Document struct {
	doc      *goquery.Document
	elements map[*html.Node]*Element
	focused  *Element
}

var _ formguard.Document = (*Document)(nil)

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{
		doc:      doc,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// ParseString parses markup held in memory.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// QuerySelectorAll returns every element matching selector in document order.
func (d *Document) QuerySelectorAll(selector string) []formguard.Element {
	matches := d.all(d.doc.Find(selector))
	out := make([]formguard.Element, 0, len(matches))
	for _, el := range matches {
		out = append(out, el)
	}
	return out
}

// Find returns the first element matching selector, or nil.
func (d *Document) Find(selector string) *Element {
	matches := d.all(d.doc.Find(selector).First())
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// FindAll returns the concrete elements matching selector.
func (d *Document) FindAll(selector string) []*Element {
	return d.all(d.doc.Find(selector))
}

// Focused returns the element that last received focus, or nil.
func (d *Document) Focused() *Element {
	return d.focused
}

// Submit dispatches a submit event on form and reports whether the browser
// would go on to send the request.
func (d *Document) Submit(form *Element) bool {
	return !form.Dispatch(formguard.EventSubmit).DefaultPrevented()
}

// SelectFiles replaces the selection of a file input and fires change.
func (d *Document) SelectFiles(input *Element, files ...formguard.FileInfo) {
	input.files = append([]formguard.FileInfo(nil), files...)
	input.Dispatch(formguard.EventChange)
}

func (d *Document) all(sel *goquery.Selection) []*Element {
	out := make([]*Element, 0, sel.Length())
	sel.Each(func(_ int, item *goquery.Selection) {
		out = append(out, d.wrap(item))
	})
	return out
}

// wrap returns the stable Element for a single-node selection so state
// survives repeated lookups.
func (d *Document) wrap(item *goquery.Selection) *Element {
	node := item.Get(0)
	if el, ok := d.elements[node]; ok {
		return el
	}
	el := &Element{
		doc:       d,
		sel:       item,
		listeners: make(map[string][]formguard.Listener),
	}
	d.elements[node] = el
	return el
}

// Element is one node of a parsed page.
type Element struct {
	doc       *Document
	sel       *goquery.Selection
	value     *string
	files     []formguard.FileInfo
	listeners map[string][]formguard.Listener
}

var _ formguard.Element = (*Element)(nil)

// Node exposes the underlying HTML node.
func (e *Element) Node() *html.Node {
	return e.sel.Get(0)
}

// Attr returns an attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	value, _ := e.sel.Attr(name)
	return value
}

// AddEventListener registers fn for event.
func (e *Element) AddEventListener(event string, fn formguard.Listener) {
	e.listeners[event] = append(e.listeners[event], fn)
}

// ListenerCount reports how many listeners are registered for event.
func (e *Element) ListenerCount(event string) int {
	return len(e.listeners[event])
}

// QuerySelector returns the first descendant matching selector.
func (e *Element) QuerySelector(selector string) formguard.Element {
	matches := e.doc.all(e.sel.Find(selector).First())
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// Value returns the typed value, falling back to the markup: the text of a
// textarea or the value attribute of anything else.
func (e *Element) Value() string {
	if e.value != nil {
		return *e.value
	}
	if goquery.NodeName(e.sel) == "textarea" {
		return e.sel.Text()
	}
	return e.Attr("value")
}

// SetValue simulates the user typing value.
func (e *Element) SetValue(value string) {
	e.value = &value
}

// Files returns the current selection of a file input.
func (e *Element) Files() []formguard.FileInfo {
	return append([]formguard.FileInfo(nil), e.files...)
}

// ClearFiles empties the selection, like assigning "" to a file input value.
func (e *Element) ClearFiles() {
	e.files = nil
	empty := ""
	e.value = &empty
}

// Focus makes e the document's focused element.
func (e *Element) Focus() {
	e.doc.focused = e
}

// Focused reports whether e holds focus.
func (e *Element) Focused() bool {
	return e.doc.focused == e
}

// Dispatch runs every listener for event in registration order.
func (e *Element) Dispatch(event string) *Event {
	ev := &Event{Type: event}
	for _, fn := range e.listeners[event] {
		fn(ev)
	}
	return ev
}

// Event records whether a listener cancelled the default action.
type Event struct {
	Type      string
	prevented bool
}

// PreventDefault cancels the default action.
func (ev *Event) PreventDefault() {
	ev.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool {
	return ev.prevented
}
