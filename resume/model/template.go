package model

// TemplateID selects a visual template. The set is closed; unknown values are
// stored as given and resolved to DefaultTemplate at render time.
type TemplateID string

const (
	TemplateClassic      TemplateID = "classic"
	TemplateModern       TemplateID = "modern"
	TemplateMinimal      TemplateID = "minimal"
	TemplateProfessional TemplateID = "professional"
	TemplateExecutive    TemplateID = "executive"
	TemplateCreative     TemplateID = "creative"
	TemplateTech         TemplateID = "tech"
	TemplateAcademic     TemplateID = "academic"

	DefaultTemplate = TemplateModern
)

var templateIDs = []TemplateID{
	TemplateClassic,
	TemplateModern,
	TemplateMinimal,
	TemplateProfessional,
	TemplateExecutive,
	TemplateCreative,
	TemplateTech,
	TemplateAcademic,
}

// TemplateIDs lists every known template in catalog order.
func TemplateIDs() []TemplateID {
	return append([]TemplateID{}, templateIDs...)
}

// Known reports whether id is one of the eight catalog entries.
func (id TemplateID) Known() bool {
	for _, t := range templateIDs {
		if t == id {
			return true
		}
	}
	return false
}

// Premium reports whether id is a locked template with no renderer.
func (id TemplateID) Premium() bool {
	switch id {
	case TemplateExecutive, TemplateCreative, TemplateTech, TemplateAcademic:
		return true
	}
	return false
}
