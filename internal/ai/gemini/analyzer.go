package gemini

import (
	"context"

	"go.uber.org/zap"

	"github.com/analystexe/jobmatch/internal/ai"
	"github.com/analystexe/jobmatch/internal/analysis"
	"github.com/analystexe/jobmatch/internal/logger"
	"github.com/analystexe/jobmatch/internal/profile"
)

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Analyzer scores a vacancy through a Gemini completion: same prompt and
// same reply interpretation as the other direct providers.
type Analyzer struct {
	generator    contentGenerator
	logger       *zap.Logger
	maxLogLength int
}

func NewAnalyzer(generator *Generator, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		generator:    generator,
		logger:       log,
		maxLogLength: defaultMaxLogLength,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, vacancyText string, p *profile.Profile) (*analysis.Result, error) {
	prompt := ai.BuildPrompt(vacancyText, p)

	a.logger.Debug("sending gemini request",
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLength)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("received gemini response",
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLength)),
	)

	return analysis.ParseModelOutput(raw)
}
