package render

import (
	"strings"
	"testing"

	"github.com/analystexe/jobmatch/internal/analysis"
)

func TestScoreClassBuckets(t *testing.T) {
	cases := []struct {
		score float64
		want  Class
	}{
		{10, ClassStrong},
		{7, ClassStrong},
		{6.9, ClassPartial},
		{6, ClassPartial},
		{5, ClassPartial},
		{4.9, ClassGap},
		{4, ClassGap},
		{1, ClassGap},
	}

	for _, tc := range cases {
		if got := ScoreClass(tc.score); got != tc.want {
			t.Errorf("ScoreClass(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestTextFullResult(t *testing.T) {
	result := &analysis.Result{
		Score:   8,
		Verdict: "Вакансия хорошо подходит кандидату.",
		Matches: []analysis.Match{
			{Item: "SQL", Status: analysis.StatusMatch, Comment: "есть в резюме"},
			{Item: "Kafka", Status: analysis.StatusPartial, Comment: "есть смежный опыт"},
			{Item: "Scala", Status: analysis.StatusGap},
		},
		Company:  &analysis.Company{Name: "Ромашка", Info: "Финтех, 200 человек."},
		ProsCons: &analysis.ProsCons{Pros: []string{"удалёнка"}, Cons: []string{"вилка не указана"}},
		Recommendation: &analysis.Recommendation{
			Decision: "откликаться",
			Actions:  []string{"подсветить опыт с SQL"},
		},
		QuickWins: []string{"добавить Kafka в резюме"},
	}

	out, err := TextString(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Оценка: 8/10 (сильное совпадение)",
		"Вердикт: Вакансия хорошо подходит кандидату.",
		"[+] SQL: есть в резюме",
		"[~] Kafka: есть смежный опыт",
		"[-] Scala",
		"Компания: Ромашка",
		"Плюсы:",
		"+ удалёнка",
		"Минусы:",
		"- вилка не указана",
		"Быстрые улучшения:",
		"* добавить Kafka в резюме",
		"Рекомендация: откликаться",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestTextSuppressesAbsentSections(t *testing.T) {
	result := &analysis.Result{
		Score:   4,
		Verdict: "Совпадение слабое.",
	}

	out, err := TextString(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "Оценка: 4/10 (слабое совпадение)") {
		t.Fatalf("score line missing:\n%s", out)
	}

	for _, absent := range []string{
		"Критерии:",
		"Компания:",
		"Плюсы:",
		"Минусы:",
		"Быстрые улучшения:",
		"Рекомендация:",
		"Карьера:",
	} {
		if strings.Contains(out, absent) {
			t.Fatalf("empty section %q rendered:\n%s", absent, out)
		}
	}
}

func TestTextPartialScoreLabel(t *testing.T) {
	result := &analysis.Result{Score: 5, Verdict: "Есть над чем подумать."}

	out, err := TextString(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "Оценка: 5/10 (частичное совпадение)") {
		t.Fatalf("partial label missing:\n%s", out)
	}
}

func TestTextShowsRawScoreWhenPresent(t *testing.T) {
	result := &analysis.Result{Score: 7.5, ScoreRaw: 75}

	out, err := TextString(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "[исходный балл: 75/100]") {
		t.Fatalf("raw score missing:\n%s", out)
	}
}

func TestTextFractionalScore(t *testing.T) {
	result := &analysis.Result{Score: 7.5}

	out, err := TextString(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "Оценка: 7.5/10 (сильное совпадение)") {
		t.Fatalf("fractional score mangled:\n%s", out)
	}
}
