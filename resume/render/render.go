// Package render turns a resume document into a printable HTML page using one
// of the built-in templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"resume-builder/resume/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer writes a complete HTML page for doc.
type Renderer func(w io.Writer, doc model.Document) error

const placeholderName = "Your Name"

var funcs = template.FuncMap{
	"name": func(fullName string) string {
		if fullName == "" {
			return placeholderName
		}
		return fullName
	},
	"join": func(items []string) string {
		return strings.Join(items, ", ")
	},
	"dates": func(start, end string) string {
		switch {
		case start != "" && end != "":
			return start + " - " + end
		case start != "":
			return start
		default:
			return end
		}
	},
	"degree": func(degree, field string) string {
		switch {
		case degree != "" && field != "":
			return degree + " in " + field
		case degree != "":
			return degree
		default:
			return field
		}
	},
}

type pageData struct {
	Template model.TemplateID
	Page     Page
	Theme    Theme
	Doc      model.Document
}

var renderers = map[model.TemplateID]Renderer{}

func init() {
	for _, id := range []model.TemplateID{
		model.TemplateClassic,
		model.TemplateModern,
		model.TemplateMinimal,
		model.TemplateProfessional,
	} {
		renderers[id] = mustBuild(id)
	}
}

func mustBuild(id model.TemplateID) Renderer {
	tmpl := template.Must(template.New(string(id)).Funcs(funcs).ParseFS(templateFS,
		"templates/page.tmpl",
		"templates/"+string(id)+".tmpl",
	))
	theme := ThemeMap[string(id)]
	return func(w io.Writer, doc model.Document) error {
		return tmpl.ExecuteTemplate(w, "page", pageData{
			Template: id,
			Page:     A4,
			Theme:    theme,
			Doc:      doc,
		})
	}
}

// Resolve maps id to the template that will actually be drawn. Unknown and
// premium ids fall back to the default template.
func Resolve(id model.TemplateID) model.TemplateID {
	if _, ok := renderers[id]; ok {
		return id
	}
	return model.DefaultTemplate
}

// Renderable reports whether id has its own renderer.
func Renderable(id model.TemplateID) bool {
	_, ok := renderers[id]
	return ok
}

// Render draws doc with the template selected by id.
func Render(w io.Writer, id model.TemplateID, doc model.Document) error {
	resolved := Resolve(id)
	if err := renderers[resolved](w, doc); err != nil {
		return fmt.Errorf("render %s: %w", resolved, err)
	}
	return nil
}

// HTML is Render into a byte slice.
func HTML(id model.TemplateID, doc model.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, id, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
