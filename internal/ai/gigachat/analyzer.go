package gigachat

import (
	"context"

	"go.uber.org/zap"

	"github.com/analystexe/jobmatch/internal/ai"
	"github.com/analystexe/jobmatch/internal/analysis"
	"github.com/analystexe/jobmatch/internal/logger"
	"github.com/analystexe/jobmatch/internal/profile"
)

const defaultMaxLogLength = 200

type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyzer runs the direct chat-completion flow: build the prompt, send it
// as a single message and interpret the raw reply.
type Analyzer struct {
	client       completer
	logger       *zap.Logger
	maxLogLength int
}

func NewAnalyzer(client *Client, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		client:       client,
		logger:       log,
		maxLogLength: defaultMaxLogLength,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, vacancyText string, p *profile.Profile) (*analysis.Result, error) {
	prompt := ai.BuildPrompt(vacancyText, p)

	a.logger.Debug("sending completion request",
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLength)),
	)

	raw, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("received completion response",
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLength)),
	)

	return analysis.ParseModelOutput(raw)
}
