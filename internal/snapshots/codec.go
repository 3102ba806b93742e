// Package snapshots persists the builder state of each user as a single JSON
// blob named "resume-storage".
package snapshots

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
	"resume-builder/resume/store"
)

// StorageName is the fixed record name every backend stores the blob under.
const StorageName = "resume-storage"

var (
	// ErrNotFound means nothing has been saved for the user yet.
	ErrNotFound = errors.New("snapshot not found")
	// ErrCorrupt means the stored blob could not be decoded at all.
	ErrCorrupt = errors.New("snapshot corrupt")
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Encode serialises a state into the persisted layout.
func Encode(state store.State) ([]byte, error) {
	return json.Marshal(state)
}

// Decode reads a persisted blob. There is no version field: blobs that do not
// match the current schema are loaded leniently. Each document part and each
// collection entry is decoded on its own; parts that fail are logged and left
// at their defaults. Only undecodable JSON is an error.
func Decode(data []byte) (store.State, error) {
	var parts map[string]json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil || parts == nil {
		return store.State{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if problems := Validate(data); len(problems) > 0 {
		telemetry.Warn("snapshot.schema_mismatch", map[string]any{"problems": problems})
	}

	state := store.DefaultState()
	if raw, ok := parts["resumeData"]; ok {
		state.ResumeData = decodeDocument(raw)
	}
	if raw, ok := parts["selectedTemplate"]; ok {
		var id string
		if json.Unmarshal(raw, &id) == nil && id != "" {
			state.SelectedTemplate = model.TemplateID(id)
		}
	}
	if raw, ok := parts["currentStep"]; ok {
		var step string
		if json.Unmarshal(raw, &step) == nil && model.BuilderStep(step).Valid() {
			state.CurrentStep = model.BuilderStep(step)
		}
	}
	state.ResumeData = state.ResumeData.Normalize()
	return state, nil
}

func decodeDocument(raw json.RawMessage) model.Document {
	doc := model.Empty()
	var parts map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		telemetry.Warn("snapshot.resume_data_dropped", map[string]any{"error": err})
		return doc
	}
	decodePart(parts, "personalDetails", &doc.PersonalDetails)
	decodePart(parts, "summary", &doc.Summary)
	decodePart(parts, "skills", &doc.Skills)
	decodeEntries(parts, "workExperience", &doc.WorkExperience)
	decodeEntries(parts, "projects", &doc.Projects)
	decodeEntries(parts, "education", &doc.Education)
	decodeEntries(parts, "certifications", &doc.Certifications)
	return doc
}

// decodePart overwrites dst only when the named part decodes cleanly.
func decodePart[T any](parts map[string]json.RawMessage, name string, dst *T) {
	raw, ok := parts[name]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		telemetry.Warn("snapshot.part_dropped", map[string]any{"part": name, "error": err})
		return
	}
	*dst = v
}

// decodeEntries keeps every entry of the named collection that decodes.
func decodeEntries[T any](parts map[string]json.RawMessage, name string, dst *[]T) {
	var raws []json.RawMessage
	decodePart(parts, name, &raws)
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			telemetry.Warn("snapshot.entry_dropped", map[string]any{"part": name, "index": i, "error": err})
			continue
		}
		out = append(out, v)
	}
	*dst = out
}

// Validate checks data against the embedded schema and returns a description
// of every violation. A nil result means the blob conforms.
func Validate(data []byte) []string {
	s, err := compiledSchema()
	if err != nil {
		return []string{"schema unavailable: " + err.Error()}
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return []string{err.Error()}
	}
	if res.Valid() {
		return nil
	}
	out := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		out = append(out, strings.TrimSpace(e.String()))
	}
	return out
}
