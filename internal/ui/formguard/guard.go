// Package formguard blocks invalid submissions of the document upload and
// comment forms before the browser sends them, and logs a short diagnostic
// whenever a file is picked.
//
// The guard only sees the page through the Document and Element interfaces.
// The WASM build binds them to syscall/js; the htmldom subpackage binds them
// to parsed HTML so the same listeners run in tests and on the server.
package formguard

// Options configures a Guard. Nil collaborators are replaced by no-ops.
type Options struct {
	Notifier  Notifier
	Console   Console
	Selectors Selectors
}

// Registration counts the elements a Guard wired listeners to.
type Registration struct {
	UploadForms  int
	CommentForms int
	FileInputs   int
}

// Guard owns the upload, comment and file preview listeners of one page.
type Guard struct {
	doc       Document
	notifier  Notifier
	console   Console
	selectors Selectors

	attached bool
	reg      Registration
}

// New prepares a guard for doc. Nothing is registered until Attach.
func New(doc Document, opts Options) *Guard {
	g := &Guard{
		doc:       doc,
		notifier:  opts.Notifier,
		console:   opts.Console,
		selectors: opts.Selectors.withDefaults(),
	}
	if g.notifier == nil {
		g.notifier = discard{}
	}
	if g.console == nil {
		g.console = discard{}
	}
	return g
}

// Attach registers every listener once per page load. Later calls return
// the first registration without wiring anything again.
func (g *Guard) Attach() Registration {
	if g.attached {
		return g.reg
	}
	g.attached = true

	if forms := g.doc.QuerySelectorAll(g.selectors.UploadForm); len(forms) > 0 {
		form := forms[0]
		form.AddEventListener(EventSubmit, func(e Event) { g.onUploadSubmit(form, e) })
		g.reg.UploadForms = 1
	}

	for _, form := range g.doc.QuerySelectorAll(g.selectors.CommentForm) {
		form := form
		form.AddEventListener(EventSubmit, func(e Event) { g.onCommentSubmit(form, e) })
		g.reg.CommentForms++
	}

	for _, input := range g.doc.QuerySelectorAll(g.selectors.AnyFileInput) {
		input := input
		input.AddEventListener(EventChange, func(Event) { g.onFileChange(input) })
		g.reg.FileInputs++
	}
	return g.reg
}

// Attached reports whether Attach has run.
func (g *Guard) Attached() bool {
	return g.attached
}

func (g *Guard) onUploadSubmit(form Element, e Event) {
	titleInput := form.QuerySelector(g.selectors.TitleInput)
	fileInput := form.QuerySelector(g.selectors.FileInput)

	var files []FileInfo
	if fileInput != nil {
		files = fileInput.Files()
	}
	failure := ValidateUpload(valueOf(titleInput), files)
	if failure == nil {
		return
	}

	target := fileInput
	if failure.Kind == KindTitleRequired {
		target = titleInput
	}
	g.reject(e, failure, target)
}

func (g *Guard) onCommentSubmit(form Element, e Event) {
	content := form.QuerySelector(g.selectors.CommentContent)
	if failure := ValidateComment(valueOf(content)); failure != nil {
		g.reject(e, failure, content)
	}
}

func (g *Guard) onFileChange(input Element) {
	files := input.Files()
	if len(files) == 0 {
		return
	}
	g.console.Log(PreviewLine(files[0]))
}

// reject cancels the event, alerts, then focuses or clears target.
func (g *Guard) reject(e Event, failure *Failure, target Element) {
	e.PreventDefault()
	g.notifier.Alert(failure.Message)
	if target == nil {
		return
	}
	switch failure.Remedy {
	case RemedyFocus:
		target.Focus()
	case RemedyClear:
		target.ClearFiles()
	}
}

func valueOf(el Element) string {
	if el == nil {
		return ""
	}
	return el.Value()
}
