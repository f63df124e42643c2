package profile

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinResumeRunes is the minimum resume length accepted on save.
const MinResumeRunes = 50

// WorkFormat is a work arrangement the candidate accepts.
type WorkFormat string

const (
	WorkFormatRemote WorkFormat = "remote"
	WorkFormatHybrid WorkFormat = "hybrid"
	WorkFormatOffice WorkFormat = "office"
)

// canonical order used when the format set is normalized.
var allWorkFormats = []WorkFormat{WorkFormatRemote, WorkFormatHybrid, WorkFormatOffice}

var workFormatLabels = map[WorkFormat]string{
	WorkFormatRemote: "удалёнка",
	WorkFormatHybrid: "гибрид",
	WorkFormatOffice: "офис",
}

// Label returns the display label embedded into direct-mode prompts.
func (f WorkFormat) Label() string {
	if label, ok := workFormatLabels[f]; ok {
		return label
	}
	return string(f)
}

// ParseWorkFormat converts user input into a known work format.
func ParseWorkFormat(s string) (WorkFormat, error) {
	format := WorkFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case WorkFormatRemote, WorkFormatHybrid, WorkFormatOffice:
		return format, nil
	default:
		return "", fmt.Errorf("unknown work format %q (expected remote, hybrid or office)", s)
	}
}

// Profile is the candidate record paired with every analysis request. It is
// saved wholesale: each save overwrites the previous record completely.
// Credential is the optional proxy-mode bearer secret; the direct-mode key
// lives in Settings instead.
type Profile struct {
	ResumeText  string       `json:"resume_text"`
	Credential  string       `json:"credential,omitempty"`
	SalaryMin   string       `json:"salary_min,omitempty"`
	WorkFormats []WorkFormat `json:"work_format,omitempty"`
	RedFlags    []string     `json:"red_flags,omitempty"`
	MustHave    []string     `json:"must_have,omitempty"`
}

var ErrResumeTooShort = errors.New("resume text is too short")

// Validate rejects profiles that cannot back an analysis request.
func (p *Profile) Validate() error {
	if p == nil {
		return errors.New("profile is required")
	}

	if utf8.RuneCountInString(strings.TrimSpace(p.ResumeText)) < MinResumeRunes {
		return fmt.Errorf("%w: minimum %d characters", ErrResumeTooShort, MinResumeRunes)
	}

	for _, format := range p.WorkFormats {
		if _, err := ParseWorkFormat(string(format)); err != nil {
			return err
		}
	}

	return nil
}

// NormalizeFormats deduplicates the work-format set and puts it into
// canonical order, so a saved set round-trips independently of input order.
func (p *Profile) NormalizeFormats() {
	if len(p.WorkFormats) == 0 {
		return
	}

	seen := make(map[WorkFormat]bool, len(p.WorkFormats))
	for _, format := range p.WorkFormats {
		seen[format] = true
	}

	normalized := make([]WorkFormat, 0, len(seen))
	for _, format := range allWorkFormats {
		if seen[format] {
			normalized = append(normalized, format)
		}
	}
	p.WorkFormats = normalized
}

// AcceptsFormat reports whether the candidate accepts the given format.
func (p *Profile) AcceptsFormat(format WorkFormat) bool {
	for _, f := range p.WorkFormats {
		if f == format {
			return true
		}
	}
	return false
}

// FormatLabels returns the display labels for the accepted formats.
func (p *Profile) FormatLabels() []string {
	labels := make([]string, 0, len(p.WorkFormats))
	for _, format := range p.WorkFormats {
		labels = append(labels, format.Label())
	}
	return labels
}

// Settings holds the direct-mode authorization key. It lives in its own
// record with a lifecycle independent from the profile; replacing it must
// invalidate any cached access token.
type Settings struct {
	AuthKey string `json:"auth_key,omitempty"`
}
