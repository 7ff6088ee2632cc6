package formguard

// Event is the subset of a DOM event the guard needs.
type Event interface {
	PreventDefault()
}

// Listener handles a dispatched DOM event.
type Listener func(Event)

// FileInfo describes one file selected in a file input.
type FileInfo struct {
	Name string
	Size int64
}

// Element is the subset of a DOM element the guard reads and mutates.
// QuerySelector returns nil when nothing matches.
type Element interface {
	AddEventListener(event string, fn Listener)
	QuerySelector(selector string) Element
	Value() string
	Files() []FileInfo
	ClearFiles()
	Focus()
}

// Document locates elements in the current page.
type Document interface {
	QuerySelectorAll(selector string) []Element
}

// Event names dispatched by the host environment.
const (
	EventSubmit = "submit"
	EventChange = "change"
)
