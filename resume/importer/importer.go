// Package importer loads an externally parsed resume into a Store. The input
// is untrusted: every field is decoded on its own and defaulted when missing
// or of the wrong type.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"resume-builder/resume/model"
	"resume-builder/resume/store"
)

// ErrMalformedPayload is returned when the payload is not a JSON object or a
// collection entry is not an object.
var ErrMalformedPayload = errors.New("malformed resume payload")

// Report counts what an import added.
type Report struct {
	PersonalDetails bool `json:"personalDetails"`
	Summary         bool `json:"summary"`
	Skills          bool `json:"skills"`
	WorkExperience  int  `json:"workExperience"`
	Projects        int  `json:"projects"`
	Education       int  `json:"education"`
	Certifications  int  `json:"certifications"`
}

type object map[string]json.RawMessage

// Import resets st and replays raw through the store's operations. A payload
// that is not an object is rejected before the reset. When a later entry is
// malformed the entries before it stay; nothing is rolled back.
func Import(ctx context.Context, st *store.Store, raw json.RawMessage, newID func() string) (Report, error) {
	var rep Report
	root, ok := asObject(raw)
	if !ok {
		return rep, fmt.Errorf("%w: top level is not an object", ErrMalformedPayload)
	}

	if err := st.ResetResume(ctx); err != nil {
		return rep, err
	}

	if v, ok := root["personalDetails"]; ok {
		if err := st.SetPersonalDetails(ctx, personalDetails(v)); err != nil {
			return rep, err
		}
		rep.PersonalDetails = true
	}
	if v, ok := root["summary"]; ok {
		if err := st.SetSummary(ctx, str(v)); err != nil {
			return rep, err
		}
		rep.Summary = true
	}
	if v, ok := root["skills"]; ok {
		if err := st.SetSkills(ctx, skills(v)); err != nil {
			return rep, err
		}
		rep.Skills = true
	}

	var err error
	if rep.WorkExperience, err = each(root, "workExperience", func(o object) error {
		return st.AddWorkExperience(ctx, model.WorkExperience{
			ID:          newID(),
			Company:     str(o["company"]),
			Position:    str(o["position"]),
			Location:    str(o["location"]),
			StartDate:   str(o["startDate"]),
			EndDate:     str(o["endDate"]),
			Current:     boolean(o["current"]),
			Description: str(o["description"]),
			Bullets:     strs(o["bullets"]),
		})
	}); err != nil {
		return rep, err
	}
	if rep.Projects, err = each(root, "projects", func(o object) error {
		return st.AddProject(ctx, model.Project{
			ID:           newID(),
			Name:         str(o["name"]),
			Description:  str(o["description"]),
			Technologies: strs(o["technologies"]),
			Link:         str(o["link"]),
			Bullets:      strs(o["bullets"]),
		})
	}); err != nil {
		return rep, err
	}
	if rep.Education, err = each(root, "education", func(o object) error {
		return st.AddEducation(ctx, model.Education{
			ID:           newID(),
			Institution:  str(o["institution"]),
			Degree:       str(o["degree"]),
			Field:        str(o["field"]),
			Location:     str(o["location"]),
			StartDate:    str(o["startDate"]),
			EndDate:      str(o["endDate"]),
			GPA:          str(o["gpa"]),
			Achievements: strs(o["achievements"]),
		})
	}); err != nil {
		return rep, err
	}
	if rep.Certifications, err = each(root, "certifications", func(o object) error {
		return st.AddCertification(ctx, model.Certification{
			ID:     newID(),
			Name:   str(o["name"]),
			Issuer: str(o["issuer"]),
			Date:   str(o["date"]),
			Link:   str(o["link"]),
		})
	}); err != nil {
		return rep, err
	}
	return rep, nil
}

// each calls add for every entry of root[key] when it is an array. Anything
// else under key is ignored.
func each(root object, key string, add func(object) error) (int, error) {
	v, ok := root[key]
	if !ok {
		return 0, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(v, &entries); err != nil || entries == nil {
		return 0, nil
	}
	added := 0
	for i, entry := range entries {
		o, ok := asObject(entry)
		if !ok {
			return added, fmt.Errorf("%w: %s[%d] is not an object", ErrMalformedPayload, key, i)
		}
		if err := add(o); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func personalDetails(raw json.RawMessage) model.PersonalDetailsPatch {
	o, _ := asObject(raw)
	return model.PersonalDetailsPatch{
		FullName: strPtr(o["fullName"]),
		Email:    strPtr(o["email"]),
		Phone:    strPtr(o["phone"]),
		Location: strPtr(o["location"]),
		LinkedIn: strPtr(o["linkedin"]),
		Website:  strPtr(o["website"]),
		GitHub:   strPtr(o["github"]),
	}
}

func skills(raw json.RawMessage) model.SkillsPatch {
	o, _ := asObject(raw)
	technical := strs(o["technical"])
	soft := strs(o["soft"])
	return model.SkillsPatch{Technical: &technical, Soft: &soft}
}

func asObject(raw json.RawMessage) (object, bool) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return object{}, false
	}
	return o, true
}

func str(raw json.RawMessage) string {
	var s string
	if raw == nil || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func strPtr(raw json.RawMessage) *string {
	s := str(raw)
	return &s
}

// strs keeps the string items of an array and drops everything else.
func strs(raw json.RawMessage) []string {
	out := []string{}
	var items []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		if string(item) == "null" {
			continue
		}
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

func boolean(raw json.RawMessage) bool {
	var b bool
	if raw == nil || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}
