package ai

import (
	"strings"

	_ "embed"

	"github.com/analystexe/jobmatch/internal/profile"
)

//go:embed prompt.md
var promptTemplate string

const (
	notSpecified = "не указана"
	none         = "нет"
)

// BuildPrompt renders the direct-mode instruction block: the candidate's
// resume and preferences, the vacancy text and the strict output-format
// directive from the embedded template.
func BuildPrompt(vacancyText string, p *profile.Profile) string {
	salary := strings.TrimSpace(p.SalaryMin)
	if salary == "" {
		salary = notSpecified
	}

	formats := strings.Join(p.FormatLabels(), ", ")
	if formats == "" {
		formats = "не указан"
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME}}", strings.TrimSpace(p.ResumeText))
	prompt = strings.ReplaceAll(prompt, "{{SALARY_MIN}}", salary)
	prompt = strings.ReplaceAll(prompt, "{{WORK_FORMATS}}", formats)
	prompt = strings.ReplaceAll(prompt, "{{RED_FLAGS}}", joinOrNone(p.RedFlags))
	prompt = strings.ReplaceAll(prompt, "{{MUST_HAVE}}", joinOrNone(p.MustHave))
	prompt = strings.ReplaceAll(prompt, "{{VACANCY}}", strings.TrimSpace(vacancyText))

	return prompt
}

func joinOrNone(items []string) string {
	trimmed := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			trimmed = append(trimmed, item)
		}
	}
	if len(trimmed) == 0 {
		return none
	}
	return strings.Join(trimmed, ", ")
}
