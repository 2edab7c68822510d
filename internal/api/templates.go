package api

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "index.html"

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// pageData is what the page renders into the form and the output element.
type pageData struct {
	Ingredients string
	Preferences string
	Output      string
}
