package render

import "resume-builder/resume/model"

// CatalogEntry describes a template for the picker.
type CatalogEntry struct {
	ID          model.TemplateID `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Layout      string           `json:"layout"`
	Premium     bool             `json:"premium"`
	Default     bool             `json:"default"`
}

var descriptions = map[model.TemplateID][3]string{
	model.TemplateClassic:      {"Classic", "Traditional single-column layout", "single-column"},
	model.TemplateModern:       {"Modern", "Two-column design with a dark sidebar", "two-column"},
	model.TemplateMinimal:      {"Minimal", "Clean, airy and understated", "single-column"},
	model.TemplateProfessional: {"Professional", "Bold header for corporate roles", "single-column"},
	model.TemplateExecutive:    {"Executive", "Elegant layout for senior leadership", "single-column"},
	model.TemplateCreative:     {"Creative", "Colourful layout for design roles", "two-column"},
	model.TemplateTech:         {"Tech", "Developer-focused with skill highlights", "two-column"},
	model.TemplateAcademic:     {"Academic", "Publication-friendly CV layout", "single-column"},
}

// Catalog lists every template in display order, locked ones included.
func Catalog() []CatalogEntry {
	ids := model.TemplateIDs()
	out := make([]CatalogEntry, 0, len(ids))
	for _, id := range ids {
		d := descriptions[id]
		out = append(out, CatalogEntry{
			ID:          id,
			Name:        d[0],
			Description: d[1],
			Layout:      d[2],
			Premium:     id.Premium(),
			Default:     id == model.DefaultTemplate,
		})
	}
	return out
}
