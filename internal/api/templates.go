package api

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"lines": func(s string) []string {
			return strings.Split(strings.TrimSpace(s), "\n")
		},
		"warning": func(s string) bool {
			return strings.HasPrefix(s, "WARNING")
		},
		"formatTime": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04:05 UTC")
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
