// Package views holds the server rendered pages.
package views

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"timeago": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
}

// Templates parses every page; names are the file names, e.g. "login.tmpl".
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))
}
