package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/analystexe/jobmatch/internal/analysis"
	"github.com/analystexe/jobmatch/internal/logger"
	"github.com/analystexe/jobmatch/internal/profile"
)

const (
	requestTimeout      = 60 * time.Second
	defaultMaxLogLength = 200
)

// Client sends the vacancy and the candidate profile to the intermediary
// REST endpoint that holds the model credentials server-side.
type Client struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client

	logger       *zap.Logger
	maxLogLength int
}

func New(logger *zap.Logger, endpoint, apiKey string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		URL:    strings.TrimSpace(endpoint),
		APIKey: strings.TrimSpace(apiKey),
		HTTPClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger:       logger,
		maxLogLength: defaultMaxLogLength,
	}
}

type analyzeRequest struct {
	VacancyText string         `json:"vacancy_text"`
	Profile     profilePayload `json:"profile"`
}

type profilePayload struct {
	ResumeText  string   `json:"resume_text"`
	SalaryMin   string   `json:"salary_min,omitempty"`
	WorkFormats []string `json:"work_format,omitempty"`
	RedFlags    []string `json:"red_flags,omitempty"`
	MustHave    []string `json:"must_have,omitempty"`
}

// Analyze posts the scoring request and decodes the structured result from
// the response body. The endpoint owns prompting and score normalization,
// so the body is taken as the final analysis. No retries.
func (c *Client) Analyze(ctx context.Context, vacancyText string, p *profile.Profile) (*analysis.Result, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("proxy endpoint url is not configured")
	}

	formats := make([]string, 0, len(p.WorkFormats))
	for _, f := range p.WorkFormats {
		formats = append(formats, string(f))
	}

	payload, err := json.Marshal(analyzeRequest{
		VacancyText: vacancyText,
		Profile: profilePayload{
			ResumeText:  p.ResumeText,
			SalaryMin:   p.SalaryMin,
			WorkFormats: formats,
			RedFlags:    p.RedFlags,
			MustHave:    p.MustHave,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	c.logger.Debug("sending proxy request",
		zap.String("url", c.URL),
		zap.String("vacancy_preview", logger.TruncateForLog(vacancyText, c.maxLogLength)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("proxy response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("proxy: bad status %s: %s", resp.Status, serverErrorMessage(body))
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("proxy response: %w", err)
	}

	result, err := analysis.DecodePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("proxy response: %w", err)
	}

	return result, nil
}

func serverErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return "request failed"
}
