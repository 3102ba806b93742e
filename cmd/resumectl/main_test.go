package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/resume/ats"
	"resume-builder/resume/render"
)

const sampleYAML = `personalDetails:
  fullName: Ada Lovelace
  email: ada@example.com
summary: ""
skills:
  technical: []
  soft: []
workExperience: []
projects: []
education: []
certifications: []
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScorePrintsResult(t *testing.T) {
	path := writeFile(t, "resume.yaml", sampleYAML)

	out, err := execute(t, "score", "--in", path, "--role", "", "--min", "0")
	require.NoError(t, err)

	var result ats.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 20, result.Score)
	assert.NotEmpty(t, result.Suggestions)
}

func TestScoreBelowMinimumFails(t *testing.T) {
	path := writeFile(t, "resume.yaml", sampleYAML)

	_, err := execute(t, "score", "--in", path, "--role", "", "--min", "50")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum 50")
}

func TestRenderSingleTemplate(t *testing.T) {
	path := writeFile(t, "resume.json", `{"personalDetails":{"fullName":"Ada Lovelace"}}`)
	outPath := filepath.Join(t.TempDir(), "resume.html")

	_, err := execute(t, "render", "--in", path, "--template", "classic", "--all=false", "--out", outPath)
	require.NoError(t, err)

	html, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Ada Lovelace")
	assert.Contains(t, string(html), `data-template="classic"`)
}

func TestRenderAllWritesEveryRenderableTemplate(t *testing.T) {
	path := writeFile(t, "resume.yaml", sampleYAML)
	dir := t.TempDir()

	out, err := execute(t, "render", "--in", path, "--all", "--out-dir", dir)
	require.NoError(t, err)

	var want int
	for _, entry := range render.Catalog() {
		if render.Renderable(entry.ID) {
			want++
			_, statErr := os.Stat(filepath.Join(dir, string(entry.ID)+".html"))
			assert.NoError(t, statErr, entry.ID)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, want)
}

func TestImportPayloadToYAML(t *testing.T) {
	payload := writeFile(t, "parsed.json", `{
		"personalDetails": {"fullName": "Grace Hopper", "email": "grace@example.com"},
		"workExperience": [{"company": "Navy", "position": "Rear Admiral"}],
		"skills": {"technical": ["COBOL"]}
	}`)
	outPath := filepath.Join(t.TempDir(), "resume.yaml")

	_, err := execute(t, "import", "--in", payload, "--out", outPath)
	require.NoError(t, err)

	doc, err := readDocument(outPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", doc.PersonalDetails.FullName)
	require.Len(t, doc.WorkExperience, 1)
	assert.Equal(t, "Navy", doc.WorkExperience[0].Company)
	assert.NotEmpty(t, doc.WorkExperience[0].ID)
	assert.Equal(t, []string{"COBOL"}, doc.Skills.Technical)
}

func TestImportRejectsNonObjectPayload(t *testing.T) {
	payload := writeFile(t, "parsed.json", `["not", "an", "object"]`)

	_, err := execute(t, "import", "--in", payload, "--out", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	path := writeFile(t, "resume.yaml", sampleYAML)

	_, err := execute(t, "export", "--in", path, "--format", "docx")
	require.Error(t, err)
}

func TestReadDocumentNormalizesMissingLists(t *testing.T) {
	path := writeFile(t, "resume.json", `{"summary":"hi"}`)

	doc, err := readDocument(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", doc.Summary)
	assert.NotNil(t, doc.WorkExperience)
	assert.NotNil(t, doc.Skills.Technical)
}
