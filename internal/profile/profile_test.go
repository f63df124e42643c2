package profile

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRejectsShortResume(t *testing.T) {
	p := &Profile{ResumeText: strings.Repeat("a", MinResumeRunes-1)}
	if err := p.Validate(); !errors.Is(err, ErrResumeTooShort) {
		t.Fatalf("expected ErrResumeTooShort, got %v", err)
	}
}

func TestValidateCountsRunesNotBytes(t *testing.T) {
	// 50 cyrillic runes are 100 bytes; must pass.
	p := &Profile{ResumeText: strings.Repeat("ж", MinResumeRunes)}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	p := &Profile{
		ResumeText:  strings.Repeat("a", MinResumeRunes),
		WorkFormats: []WorkFormat{"freelance"},
	}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for unknown work format")
	}
}

func TestNormalizeFormats(t *testing.T) {
	p := &Profile{WorkFormats: []WorkFormat{WorkFormatOffice, WorkFormatRemote, WorkFormatOffice}}
	p.NormalizeFormats()

	if len(p.WorkFormats) != 2 {
		t.Fatalf("expected 2 formats after normalize, got %d", len(p.WorkFormats))
	}
	if p.WorkFormats[0] != WorkFormatRemote || p.WorkFormats[1] != WorkFormatOffice {
		t.Fatalf("unexpected canonical order: %v", p.WorkFormats)
	}
}

func TestParseWorkFormat(t *testing.T) {
	if _, err := ParseWorkFormat(" Remote "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseWorkFormat("onsite"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWorkFormatLabels(t *testing.T) {
	cases := map[WorkFormat]string{
		WorkFormatRemote: "удалёнка",
		WorkFormatHybrid: "гибрид",
		WorkFormatOffice: "офис",
	}
	for format, want := range cases {
		if got := format.Label(); got != want {
			t.Fatalf("label for %s: got %q, want %q", format, got, want)
		}
	}
}
