package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/resume/model"
)

var renderable = []model.TemplateID{
	model.TemplateClassic,
	model.TemplateModern,
	model.TemplateMinimal,
	model.TemplateProfessional,
}

func parse(t *testing.T, id model.TemplateID, doc model.Document) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, id, doc))
	page, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return page
}

func fullDoc() model.Document {
	doc := model.Empty()
	doc.PersonalDetails = model.PersonalDetails{FullName: "Jane Doe", Email: "jane@x.com", Phone: "555", Location: "Berlin"}
	doc.Summary = "Backend engineer."
	doc.Skills.Technical = []string{"Go", "SQL"}
	doc.WorkExperience = []model.WorkExperience{
		{ID: "w1", Company: "Acme", Position: "Engineer", StartDate: "2020", EndDate: "2022", Bullets: []string{}},
		{ID: "w2", Company: "Globex", Position: "Lead", StartDate: "2022", Bullets: []string{}},
	}
	doc.Education = []model.Education{{ID: "e1", Institution: "MIT", Degree: "BSc", Field: "CS"}}
	doc.Certifications = []model.Certification{{ID: "c1", Name: "CKA", Issuer: "CNCF", Date: "2023-05"}}
	return doc
}

func TestEmptySectionsAreNeverRendered(t *testing.T) {
	for _, id := range renderable {
		t.Run(string(id), func(t *testing.T) {
			page := parse(t, id, fullDoc())

			assert.Zero(t, page.Find(`[data-section="projects"]`).Length())
			assert.Equal(t, 1, page.Find(`[data-section="experience"]`).Length())
			assert.NotContains(t, page.Text(), "Projects")

			empty := parse(t, id, model.Empty())
			for _, section := range []string{"summary", "skills", "experience", "education", "projects", "certifications"} {
				assert.Zero(t, empty.Find(`[data-section="`+section+`"]`).Length(), section)
			}
		})
	}
}

func TestSingleCertificationRenderedVerbatim(t *testing.T) {
	for _, id := range renderable {
		t.Run(string(id), func(t *testing.T) {
			page := parse(t, id, fullDoc())

			entries := page.Find(`[data-entry="certification"]`)
			require.Equal(t, 1, entries.Length())
			assert.Equal(t, "CKA", strings.TrimSpace(entries.Find(".cert-name").Text()))
			assert.Equal(t, "CNCF", strings.TrimSpace(entries.Find(".cert-issuer").Text()))
			assert.Equal(t, "2023-05", strings.TrimSpace(entries.Find(".cert-date").Text()))
		})
	}
}

func TestPlaceholderNameOnlyFallback(t *testing.T) {
	for _, id := range renderable {
		t.Run(string(id), func(t *testing.T) {
			page := parse(t, id, model.Empty())
			assert.Equal(t, "Your Name", strings.TrimSpace(page.Find("h1").First().Text()))
			assert.NotContains(t, page.Find(".page").Text(), "Present")
			assert.NotContains(t, page.Find(".page").Text(), "GPA")
		})
	}
}

func TestEntriesKeepInsertionOrder(t *testing.T) {
	for _, id := range renderable {
		t.Run(string(id), func(t *testing.T) {
			page := parse(t, id, fullDoc())
			entries := page.Find(`[data-entry="experience"]`)
			require.Equal(t, 2, entries.Length())
			assert.Contains(t, entries.Eq(0).Text(), "Acme")
			assert.Contains(t, entries.Eq(1).Text(), "Globex")
		})
	}
}

func TestOptionalScalarsOmitted(t *testing.T) {
	doc := fullDoc()
	doc.Projects = []model.Project{{ID: "p1", Name: "Site", Technologies: []string{}, Bullets: []string{}}}

	for _, id := range renderable {
		t.Run(string(id), func(t *testing.T) {
			page := parse(t, id, doc)
			assert.Equal(t, 1, page.Find(`[data-entry="project"]`).Length())
			assert.Zero(t, page.Find(`[data-entry="project"] a`).Length())
		})
	}
}

func TestUnknownAndPremiumFallBackToModern(t *testing.T) {
	assert.Equal(t, model.TemplateModern, Resolve("bogus"))
	assert.Equal(t, model.TemplateModern, Resolve(model.TemplateExecutive))
	assert.Equal(t, model.TemplateClassic, Resolve(model.TemplateClassic))

	page := parse(t, "bogus", fullDoc())
	tmpl, ok := page.Find(".page").Attr("data-template")
	require.True(t, ok)
	assert.Equal(t, "modern", tmpl)
}

func TestPageIsA4(t *testing.T) {
	out, err := HTML(model.TemplateClassic, fullDoc())
	require.NoError(t, err)
	assert.Contains(t, string(out), "width: 210mm")
	assert.Contains(t, string(out), "min-height: 297mm")
}

func TestUserTextIsEscaped(t *testing.T) {
	doc := fullDoc()
	doc.Summary = "<script>alert(1)</script>"
	out, err := HTML(model.TemplateMinimal, doc)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>alert(1)</script>")
}

func TestCatalog(t *testing.T) {
	entries := Catalog()
	require.Len(t, entries, 8)

	premium := 0
	for _, e := range entries {
		if e.Premium {
			premium++
			assert.False(t, Renderable(e.ID), e.ID)
		} else {
			assert.True(t, Renderable(e.ID), e.ID)
		}
		assert.NotEmpty(t, e.Name)
	}
	assert.Equal(t, 4, premium)
	assert.True(t, entries[1].Default)
}
