package formguard_test

import (
	"testing"

	"github.com/Its-donkey/docshare/internal/ui/formguard"
	"github.com/Its-donkey/docshare/internal/ui/formguard/htmldom"
)

const mib = 1024 * 1024

const fixturePage = `<!doctype html>
<html><body>
<form action="/upload" method="post" enctype="multipart/form-data">
  <input type="text" name="title" value="">
  <input type="file" name="file">
  <button type="submit">Enviar</button>
</form>
<form action="/documents/1/comments" method="post" id="thread-1">
  <textarea name="content"></textarea>
</form>
<form action="/documents/2/comments" method="post" id="thread-2">
  <textarea name="content">Already typed</textarea>
</form>
<form action="/search"><input type="file" name="attachment"></form>
</body></html>`

type page struct {
	doc      *htmldom.Document
	rec      *formguard.Recorder
	guard    *formguard.Guard
	upload   *htmldom.Element
	title    *htmldom.Element
	file     *htmldom.Element
	thread1  *htmldom.Element
	thread2  *htmldom.Element
	stranger *htmldom.Element
}

func newPage(t *testing.T) page {
	t.Helper()
	doc, err := htmldom.ParseString(fixturePage)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	rec := &formguard.Recorder{}
	guard := formguard.New(doc, formguard.Options{Notifier: rec, Console: rec})
	guard.Attach()
	return page{
		doc:      doc,
		rec:      rec,
		guard:    guard,
		upload:   doc.Find(`form[action="/upload"]`),
		title:    doc.Find(`input[name="title"]`),
		file:     doc.Find(`input[name="file"]`),
		thread1:  doc.Find("#thread-1"),
		thread2:  doc.Find("#thread-2"),
		stranger: doc.Find(`input[name="attachment"]`),
	}
}

func TestAttachRegistersOnce(t *testing.T) {
	p := newPage(t)
	reg := p.guard.Attach()
	want := formguard.Registration{UploadForms: 1, CommentForms: 2, FileInputs: 2}
	if reg != want {
		t.Fatalf("expected %+v, got %+v", want, reg)
	}
	if n := p.upload.ListenerCount(formguard.EventSubmit); n != 1 {
		t.Fatalf("expected one submit listener after repeated Attach, got %d", n)
	}
	if n := p.file.ListenerCount(formguard.EventChange); n != 1 {
		t.Fatalf("expected one change listener, got %d", n)
	}
	if !p.guard.Attached() {
		t.Fatalf("expected guard to report attached")
	}
}

func TestUploadValidSubmissionProceeds(t *testing.T) {
	p := newPage(t)
	p.title.SetValue("Invoice Q1")
	p.doc.SelectFiles(p.file, formguard.FileInfo{Name: "invoice.png", Size: 5 * mib})

	if !p.doc.Submit(p.upload) {
		t.Fatalf("expected submission to proceed")
	}
	if len(p.rec.Alerts) != 0 {
		t.Fatalf("expected no alerts, got %v", p.rec.Alerts)
	}
	if p.doc.Focused() != nil {
		t.Fatalf("expected focus untouched")
	}
}

func TestUploadMissingTitleFocusesTitle(t *testing.T) {
	p := newPage(t)
	p.title.SetValue("   ")
	p.doc.SelectFiles(p.file, formguard.FileInfo{Name: "invoice.png", Size: 5 * mib})

	if p.doc.Submit(p.upload) {
		t.Fatalf("expected submission to be cancelled")
	}
	if got := p.rec.LastAlert(); got != "Por favor, preencha o título do documento." {
		t.Fatalf("unexpected alert %q", got)
	}
	if !p.title.Focused() {
		t.Fatalf("expected title to hold focus")
	}
	if len(p.file.Files()) != 1 {
		t.Fatalf("expected file selection to survive a title failure")
	}
}

func TestUploadMissingFileFocusesFileInput(t *testing.T) {
	p := newPage(t)
	p.title.SetValue("Invoice Q1")

	if p.doc.Submit(p.upload) {
		t.Fatalf("expected submission to be cancelled")
	}
	if got := p.rec.LastAlert(); got != formguard.MsgFileRequired {
		t.Fatalf("unexpected alert %q", got)
	}
	if !p.file.Focused() {
		t.Fatalf("expected file input to hold focus")
	}
}

func TestUploadInvalidExtensionClearsSelection(t *testing.T) {
	p := newPage(t)
	p.title.SetValue("Invoice Q1")
	p.doc.SelectFiles(p.file, formguard.FileInfo{Name: "malware.exe", Size: 1024})

	if p.doc.Submit(p.upload) {
		t.Fatalf("expected submission to be cancelled")
	}
	if got := p.rec.LastAlert(); got != "Formato de arquivo inválido. Use PDF, JPG ou PNG." {
		t.Fatalf("unexpected alert %q", got)
	}
	if len(p.file.Files()) != 0 {
		t.Fatalf("expected selection to be cleared")
	}
	if p.doc.Focused() != nil {
		t.Fatalf("expected no focus change on a cleared field")
	}
}

func TestUploadSizeBoundary(t *testing.T) {
	p := newPage(t)
	p.title.SetValue("Scan")

	p.doc.SelectFiles(p.file, formguard.FileInfo{Name: "scan.PDF", Size: 20 * mib})
	if !p.doc.Submit(p.upload) {
		t.Fatalf("expected exactly 20 MiB to be accepted")
	}

	p.doc.SelectFiles(p.file, formguard.FileInfo{Name: "scan.pdf", Size: 20*mib + 1})
	if p.doc.Submit(p.upload) {
		t.Fatalf("expected 20 MiB + 1 to be rejected")
	}
	if got := p.rec.LastAlert(); got != formguard.MsgFileTooLarge {
		t.Fatalf("unexpected alert %q", got)
	}
	if len(p.file.Files()) != 0 {
		t.Fatalf("expected oversized selection to be cleared")
	}
}

func TestCommentFormsValidateIndependently(t *testing.T) {
	p := newPage(t)
	content1 := p.thread1.QuerySelector(`textarea[name="content"]`).(*htmldom.Element)
	content1.SetValue("   ")

	if p.doc.Submit(p.thread1) {
		t.Fatalf("expected blank comment to be cancelled")
	}
	if got := p.rec.LastAlert(); got != "Por favor, digite um comentário." {
		t.Fatalf("unexpected alert %q", got)
	}
	if !content1.Focused() {
		t.Fatalf("expected textarea to hold focus")
	}

	p.rec.Reset()
	if !p.doc.Submit(p.thread2) {
		t.Fatalf("expected prefilled comment form to submit")
	}
	if len(p.rec.Alerts) != 0 {
		t.Fatalf("expected no alerts for the second thread, got %v", p.rec.Alerts)
	}

	content1.SetValue("Nice doc!")
	if !p.doc.Submit(p.thread1) {
		t.Fatalf("expected filled comment to submit")
	}
}

func TestFilePreviewLogsEveryFileInput(t *testing.T) {
	p := newPage(t)
	p.doc.SelectFiles(p.file, formguard.FileInfo{Name: "a.pdf", Size: 1048576})
	p.doc.SelectFiles(p.stranger, formguard.FileInfo{Name: "b.bin", Size: 1572864})
	p.doc.SelectFiles(p.file)

	want := []string{
		"Arquivo selecionado: a.pdf (1.00 MB)",
		"Arquivo selecionado: b.bin (1.50 MB)",
	}
	if len(p.rec.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), p.rec.Lines)
	}
	for i := range want {
		if p.rec.Lines[i] != want[i] {
			t.Fatalf("line %d: expected %q got %q", i, want[i], p.rec.Lines[i])
		}
	}
	if len(p.rec.Alerts) != 0 {
		t.Fatalf("expected preview to stay silent, got %v", p.rec.Alerts)
	}
}

func TestPageWithoutFormsRegistersNothing(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><p>empty</p></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	reg := formguard.New(doc, formguard.Options{}).Attach()
	if reg != (formguard.Registration{}) {
		t.Fatalf("expected empty registration, got %+v", reg)
	}
}

func TestCustomSelectors(t *testing.T) {
	doc, err := htmldom.ParseString(`<form action="/send" class="upload">
<input name="name"><input type="file" name="doc"></form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec := &formguard.Recorder{}
	guard := formguard.New(doc, formguard.Options{
		Notifier: rec,
		Selectors: formguard.Selectors{
			UploadForm: "form.upload",
			TitleInput: `input[name="name"]`,
			FileInput:  `input[name="doc"]`,
		},
	})
	if reg := guard.Attach(); reg.UploadForms != 1 || reg.FileInputs != 1 {
		t.Fatalf("unexpected registration %+v", reg)
	}
	form := doc.Find("form.upload")
	if doc.Submit(form) {
		t.Fatalf("expected missing title to cancel")
	}
	if !doc.Find(`input[name="name"]`).Focused() {
		t.Fatalf("expected custom title input to be focused")
	}
}

func TestUploadFormWithoutTitleInputTreatsTitleAsBlank(t *testing.T) {
	doc, err := htmldom.ParseString(`<form action="/upload"><input type="file" name="file"></form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec := &formguard.Recorder{}
	formguard.New(doc, formguard.Options{Notifier: rec}).Attach()
	if doc.Submit(doc.Find("form")) {
		t.Fatalf("expected submission to be cancelled")
	}
	if rec.LastAlert() != formguard.MsgTitleRequired {
		t.Fatalf("unexpected alert %q", rec.LastAlert())
	}
}
