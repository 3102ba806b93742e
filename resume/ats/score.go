// Package ats estimates how well a resume will fare with applicant tracking
// systems using a fixed additive rubric.
package ats

import (
	"strings"
	"unicode/utf8"

	"resume-builder/resume/model"
)

const (
	minSummaryLength  = 50
	minTechnicalCount = 5
)

// Result is a score in [0,100] plus the suggestions for every missed check.
type Result struct {
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

type check struct {
	points     int
	passed     func(model.Document) bool
	suggestion string
}

var rubric = []check{
	{10, func(d model.Document) bool { return d.PersonalDetails.FullName != "" }, "Add your full name"},
	{10, func(d model.Document) bool { return d.PersonalDetails.Email != "" }, "Add your email address"},
	{15, func(d model.Document) bool { return utf8.RuneCountInString(d.Summary) > minSummaryLength }, "Add a professional summary (50+ characters)"},
	{15, func(d model.Document) bool { return len(d.Skills.Technical) >= minTechnicalCount }, "Add at least 5 technical skills"},
	{20, func(d model.Document) bool { return len(d.WorkExperience) >= 1 }, "Add at least one work experience"},
	{15, func(d model.Document) bool { return len(d.Education) >= 1 }, "Add your education"},
	{10, func(d model.Document) bool { return len(d.Projects) >= 1 }, "Add at least one project"},
}

const rolePoints = 5

// Score evaluates doc. A blank targetRole disables the role bonus and its suggestion.
func Score(doc model.Document, targetRole string) Result {
	res := Result{Suggestions: []string{}}
	for _, c := range rubric {
		if c.passed(doc) {
			res.Score += c.points
			continue
		}
		res.Suggestions = append(res.Suggestions, c.suggestion)
	}

	role := strings.TrimSpace(targetRole)
	if role == "" {
		return res
	}
	if strings.Contains(strings.ToLower(doc.Summary), strings.ToLower(role)) {
		res.Score += rolePoints
	} else {
		res.Suggestions = append(res.Suggestions, `Include "`+role+`" in your summary`)
	}
	return res
}
