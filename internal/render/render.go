package render

import (
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/analystexe/jobmatch/internal/analysis"
)

// Class is the three-way presentation bucket derived from the score.
type Class string

const (
	ClassStrong  Class = "strong"
	ClassPartial Class = "partial"
	ClassGap     Class = "gap"
)

// ScoreClass buckets a 1-10 score: 7 and above reads as a strong match,
// 5-6 as partial, everything below as a gap.
func ScoreClass(score float64) Class {
	switch {
	case score >= 7:
		return ClassStrong
	case score >= 5:
		return ClassPartial
	default:
		return ClassGap
	}
}

var classLabels = map[Class]string{
	ClassStrong:  "сильное совпадение",
	ClassPartial: "частичное совпадение",
	ClassGap:     "слабое совпадение",
}

var statusGlyphs = map[analysis.Status]string{
	analysis.StatusMatch:   "[+]",
	analysis.StatusPartial: "[~]",
	analysis.StatusGap:     "[-]",
}

const resultTemplate = `Оценка: {{formatScore .Score}}/10 ({{classLabel .Score}}){{if .ScoreRaw}} [исходный балл: {{formatScore .ScoreRaw}}/100]{{end}}
{{- if .Verdict}}
Вердикт: {{.Verdict}}
{{- end}}
{{- if .Matches}}

Критерии:
{{- range .Matches}}
  {{statusGlyph .Status}} {{.Item}}{{if .Comment}}: {{.Comment}}{{end}}
{{- end}}
{{- end}}
{{- if .Company}}

Компания: {{.Company.Name}}{{if .Company.Info}}
{{.Company.Info}}{{end}}
{{- end}}
{{- if .Details}}

{{- if .Details.Career}}
Карьера: {{.Details.Career}}
{{- end}}
{{- if .Details.Stack}}
Стек: {{.Details.Stack}}
{{- end}}
{{- if .Details.Team}}
Команда: {{.Details.Team}}
{{- end}}
{{- end}}
{{- if .ProsCons}}
{{- if .ProsCons.Pros}}

Плюсы:
{{- range .ProsCons.Pros}}
  + {{.}}
{{- end}}
{{- end}}
{{- if .ProsCons.Cons}}

Минусы:
{{- range .ProsCons.Cons}}
  - {{.}}
{{- end}}
{{- end}}
{{- end}}
{{- if .QuickWins}}

Быстрые улучшения:
{{- range .QuickWins}}
  * {{.}}
{{- end}}
{{- end}}
{{- if .Recommendation}}

Рекомендация: {{.Recommendation.Decision}}
{{- range .Recommendation.Actions}}
  * {{.}}
{{- end}}
{{- end}}
`

var resultTmpl = template.Must(template.New("result").Funcs(template.FuncMap{
	"formatScore": formatScore,
	"classLabel":  func(score float64) string { return classLabels[ScoreClass(score)] },
	"statusGlyph": statusGlyph,
}).Parse(resultTemplate))

// Text writes the human-readable report. Sections absent from the result
// are suppressed entirely rather than rendered as empty placeholders.
func Text(w io.Writer, result *analysis.Result) error {
	return resultTmpl.Execute(w, result)
}

// TextString renders the report into a string.
func TextString(result *analysis.Result) (string, error) {
	var sb strings.Builder
	if err := Text(&sb, result); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func statusGlyph(s analysis.Status) string {
	if glyph, ok := statusGlyphs[s]; ok {
		return glyph
	}
	return "[?]"
}
