package page

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minElementRunes is the minimum rendered text length for a selector
	// match to be trusted as the posting body.
	minElementRunes = 200
	// minSelectionRunes is the minimum length for the user's text selection
	// to be used instead.
	minSelectionRunes = 100
	// maxFallbackRunes caps the unconditional whole-page fallback.
	maxFallbackRunes = 5000
)

// ErrNoContent is returned when the page carries no text at all. Callers
// substitute PastePlaceholder so the user can paste the posting manually.
var ErrNoContent = errors.New("no vacancy text found on page")

// PastePlaceholder is shown in place of extracted text when nothing could
// be recovered from the page.
const PastePlaceholder = "Не удалось получить текст вакансии со страницы. Вставьте его вручную."

// descriptionSelectors lists containers known to hold job descriptions on
// common job boards, followed by generic article containers. Order matters:
// the first element exceeding minElementRunes wins.
var descriptionSelectors = []string{
	`[data-qa="vacancy-description"]`,
	".vacancy-description",
	".job-description",
	"#job-description",
	`[class*="jobDescription"]`,
	".description__text",
	".posting-description",
	".vacancy-section",
	"article",
	"main",
	"#content",
	".content",
}

// noiseSelectors are stripped before the whole-page fallback so navigation
// chrome does not crowd out the posting text.
var noiseSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"header", "footer", "nav", "aside",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Extract recovers the job-posting text from a page using an ordered
// fallback chain: known description containers first, then the user's text
// selection, then the leading slice of the whole page text. A missed
// selector is not an error; only a completely empty page is.
func (p *Page) Extract() (string, error) {
	if p == nil || p.doc == nil {
		return "", ErrNoContent
	}

	for _, selector := range descriptionSelectors {
		node := p.doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}

		text := strings.TrimSpace(node.Text())
		if utf8.RuneCountInString(text) > minElementRunes {
			return text, nil
		}
	}

	if utf8.RuneCountInString(p.Selection) > minSelectionRunes {
		return p.Selection, nil
	}

	text := p.fullText()
	if text == "" {
		return "", ErrNoContent
	}

	return truncateRunes(text, maxFallbackRunes), nil
}

// fullText returns the whitespace-normalized text of the page body with
// script/style/navigation noise removed. The removal happens on a clone so
// extraction never mutates the loaded page.
func (p *Page) fullText() string {
	body := p.doc.Find("body").Clone()
	if body.Length() == 0 {
		return ""
	}

	body.Find(strings.Join(noiseSelectors, ", ")).Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	text := whitespaceRun.ReplaceAllString(body.Text(), " ")
	return strings.TrimSpace(text)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
