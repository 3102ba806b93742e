package render

import "html/template"

// Page is the fixed sheet every template is laid out on. Export captures it as is.
type Page struct {
	Width  template.CSS
	Height template.CSS
}

// A4 is 210mm x 297mm.
var A4 = Page{Width: "210mm", Height: "297mm"}

// Theme captures the base typography and colours a template is drawn with.
type Theme struct {
	Font     template.CSS
	BaseSize template.CSS
	Text     template.CSS
	Name     template.CSS
	Heading  template.CSS
	Muted    template.CSS
}

const baseFont template.CSS = "Arial, Helvetica, sans-serif"

// ThemeMap centralizes the palette for each renderable template.
var ThemeMap = map[string]Theme{
	"classic": {
		Font:     "Georgia, 'Times New Roman', serif",
		BaseSize: "13px",
		Text:     "#111827",
		Name:     "#111111",
		Heading:  "#1f2937",
		Muted:    "#4b5563",
	},
	"modern": {
		Font:     baseFont,
		BaseSize: "13px",
		Text:     "#1f2937",
		Name:     "#ffffff",
		Heading:  "#1e293b",
		Muted:    "#6b7280",
	},
	"minimal": {
		Font:     baseFont,
		BaseSize: "12px",
		Text:     "#374151",
		Name:     "#111827",
		Heading:  "#9ca3af",
		Muted:    "#9ca3af",
	},
	"professional": {
		Font:     baseFont,
		BaseSize: "13px",
		Text:     "#1f2937",
		Name:     "#ffffff",
		Heading:  "#1e3a5f",
		Muted:    "#6b7280",
	},
}
