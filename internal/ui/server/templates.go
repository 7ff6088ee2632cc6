package server

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// loadTemplates parses the embedded page templates keyed by logical name.
func loadTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"bytes":    formatBytes,
		"datetime": formatDateTime,
		"ago":      humanize.Time,
	}

	pages := map[string][]string{
		"home":     {"templates/base.tmpl", "templates/home.tmpl"},
		"document": {"templates/base.tmpl", "templates/document.tmpl"},
	}
	templates := make(map[string]*template.Template, len(pages))
	for name, files := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

func formatBytes(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(size))
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format("02/01/2006 15:04 UTC")
}
