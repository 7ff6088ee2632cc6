package htmldom

import (
	"testing"

	"github.com/Its-donkey/docshare/internal/ui/formguard"
)

const markup = `<form action="/upload">
<input type="text" name="title" value="Preset">
<textarea name="notes">Line one</textarea>
<input type="file" name="file">
</form>`

func TestValueFallsBackToMarkup(t *testing.T) {
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	title := doc.Find(`input[name="title"]`)
	if got := title.Value(); got != "Preset" {
		t.Fatalf("expected value attribute, got %q", got)
	}
	if got := doc.Find("textarea").Value(); got != "Line one" {
		t.Fatalf("expected textarea text, got %q", got)
	}
	title.SetValue("Typed")
	if got := doc.Find(`input[name="title"]`).Value(); got != "Typed" {
		t.Fatalf("expected typed value to stick across lookups, got %q", got)
	}
}

func TestQuerySelectorMissReturnsNilInterface(t *testing.T) {
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form := doc.Find("form")
	if el := form.QuerySelector("select"); el != nil {
		t.Fatalf("expected nil element, got %#v", el)
	}
	if doc.Find("select") != nil {
		t.Fatalf("expected nil from Find")
	}
	if got := len(doc.QuerySelectorAll("input")); got != 2 {
		t.Fatalf("expected 2 inputs, got %d", got)
	}
}

func TestSelectFilesDispatchesChange(t *testing.T) {
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	input := doc.Find(`input[type="file"]`)
	var seen []formguard.FileInfo
	input.AddEventListener(formguard.EventChange, func(formguard.Event) {
		seen = input.Files()
	})
	doc.SelectFiles(input, formguard.FileInfo{Name: "a.pdf", Size: 3})
	if len(seen) != 1 || seen[0].Name != "a.pdf" {
		t.Fatalf("expected listener to observe selection, got %+v", seen)
	}
	input.ClearFiles()
	if len(input.Files()) != 0 || input.Value() != "" {
		t.Fatalf("expected cleared input")
	}
}

func TestSubmitReportsCancellation(t *testing.T) {
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form := doc.Find("form")
	if !doc.Submit(form) {
		t.Fatalf("expected submission without listeners to proceed")
	}
	form.AddEventListener(formguard.EventSubmit, func(e formguard.Event) { e.PreventDefault() })
	if doc.Submit(form) {
		t.Fatalf("expected cancelled submission")
	}
	if form.Attr("action") != "/upload" {
		t.Fatalf("unexpected action attr %q", form.Attr("action"))
	}
}

func TestFocusMovesBetweenElements(t *testing.T) {
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	title := doc.Find(`input[name="title"]`)
	notes := doc.Find("textarea")
	title.Focus()
	notes.Focus()
	if title.Focused() || !notes.Focused() || doc.Focused() != notes {
		t.Fatalf("expected focus on notes only")
	}
}
