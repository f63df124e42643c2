package ai

import (
	"context"

	"github.com/analystexe/jobmatch/internal/analysis"
	"github.com/analystexe/jobmatch/internal/profile"
)

// Analyzer scores a vacancy against the candidate profile. Implementations
// cover the two backend access modes: the proxy REST endpoint and the
// direct chat-completion providers.
type Analyzer interface {
	Analyze(ctx context.Context, vacancyText string, p *profile.Profile) (*analysis.Result, error)
}
