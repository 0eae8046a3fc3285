package api

import (
	"embed"
	"html/template"
	"strconv"
	"strings"

	"syscourse/server/catalog/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type courseCard struct {
	Base   string
	Course domain.Course
}

type resourceCard struct {
	Base     string
	Resource domain.Resource
}

// Templates parses the embedded pages. Names are the file basenames.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"rating": func(avg *float64) string {
			if avg == nil {
				return ""
			}
			return strconv.FormatFloat(*avg, 'f', 1, 64)
		},
		"isPDF":        func(contentType string) bool { return strings.EqualFold(contentType, "application/pdf") },
		"courseCard":   func(base string, c domain.Course) courseCard { return courseCard{Base: base, Course: c} },
		"resourceCard": func(base string, r domain.Resource) resourceCard { return resourceCard{Base: base, Resource: r} },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
