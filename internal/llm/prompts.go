package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/summary_system.txt
	summarySystemPrompt string
	//go:embed prompts/bullets_system.txt
	bulletsSystemPrompt string
	//go:embed prompts/optimize_system.txt
	optimizeSystemPrompt string
	//go:embed prompts/parse_system.txt
	parseSystemPrompt string
)

// BuildGeneratePrompt returns the system and user messages for a generation request.
func BuildGeneratePrompt(req GenerateRequest) ([]Message, bool) {
	var system, user string
	switch req.Type {
	case TypeSummary:
		system = summarySystemPrompt
		user = "Write a professional summary for a " + req.ExperienceLevel + " " + req.JobRole + ".\n" +
			"Focus on key skills, achievements, and value they bring to employers.\n" +
			"Make it ATS-friendly with relevant industry keywords."
	case TypeBullets:
		company := req.Company
		if strings.TrimSpace(company) == "" {
			company = "a company"
		}
		var b strings.Builder
		b.WriteString("Generate 4-5 bullet points for a " + req.Position + " role at " + company + ".\n")
		if strings.TrimSpace(req.CurrentDescription) != "" {
			b.WriteString("Current job description context: " + req.CurrentDescription + "\n")
		}
		b.WriteString("Focus on achievements, not just responsibilities.\n")
		b.WriteString("Use strong action verbs and quantify results.")
		system = bulletsSystemPrompt
		user = b.String()
	case TypeOptimize:
		system = optimizeSystemPrompt
		user = "Optimize this resume content for a " + req.TargetRole + " position:\n" +
			"\"" + req.CurrentDescription + "\"\n" +
			"Make it more impactful with action verbs and measurable achievements."
	default:
		return nil, false
	}
	return []Message{
		{Role: RoleSystem, Content: strings.TrimSpace(system)},
		{Role: RoleUser, Content: user},
	}, true
}

// BuildParsePrompt returns the messages asking for a structured résumé extraction.
func BuildParsePrompt(fileContent string) []Message {
	return []Message{
		{Role: RoleSystem, Content: strings.TrimSpace(parseSystemPrompt)},
		{Role: RoleUser, Content: "Parse this resume and extract all information into the structured JSON format:\n\n" + fileContent},
	}
}
