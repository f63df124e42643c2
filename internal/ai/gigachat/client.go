package gigachat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultAPIURL   = "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"
	DefaultModel    = "GigaChat"
	DefaultScope    = "GIGACHAT_API_PERS"

	// tokenSafetyMargin: a cached token this close to expiry is treated as
	// already expired and refetched before the dependent call proceeds.
	tokenSafetyMargin = 60 * time.Second

	completionTemperature = 0.3
	completionMaxTokens   = 2000

	oauthTimeout      = 20 * time.Second
	completionTimeout = 60 * time.Second
)

// ErrAuthorization marks missing or rejected credentials, surfaced to the
// user distinctly from generic backend failures.
var ErrAuthorization = errors.New("gigachat authorization failed")

// Client talks to the GigaChat OAuth and chat-completion endpoints. It
// holds exactly one access token process-wide, refreshed lazily under a
// mutex at the start of each dependent request.
type Client struct {
	OAuthURL   string
	APIURL     string
	HTTPClient *http.Client

	logger *zap.Logger
	model  string
	scope  string

	mu          sync.Mutex
	authKey     string
	token       string
	tokenExpiry time.Time

	// now is a clock seam for token-lifecycle tests.
	now func() time.Time
}

func New(logger *zap.Logger, authKey, model, scope string) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if scope = strings.TrimSpace(scope); scope == "" {
		scope = DefaultScope
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		OAuthURL: DefaultOAuthURL,
		APIURL:   DefaultAPIURL,
		HTTPClient: &http.Client{
			Timeout: completionTimeout,
		},
		logger:  logger,
		model:   model,
		scope:   scope,
		authKey: strings.TrimSpace(authKey),
		now:     time.Now,
	}
}

func (c *Client) Model() string {
	return c.model
}

// SetAuthKey replaces the stored credential and invalidates the cached
// access token, so the next request authorizes from scratch. The CLI
// builds a fresh Client per run, which already guarantees a key change
// never reuses an old token; this method carries the same guarantee for
// callers that keep a Client alive across key changes.
func (c *Client) SetAuthKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.authKey = strings.TrimSpace(key)
	c.token = ""
	c.tokenExpiry = time.Time{}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt as a single user-role message and returns the
// first completion's content as raw text. No retries: any failure is
// recoverable only by a new user-initiated action.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gigachat completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gigachat completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gigachat completion: bad status %s: %s", resp.Status, apiErrorMessage(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gigachat completion response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("gigachat completion returned no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("gigachat completion returned empty content")
	}

	return content, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	// ExpiresAt is an epoch timestamp in milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

// accessToken returns the cached token while it is still comfortably valid,
// otherwise performs the OAuth exchange and caches the result.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Before(c.tokenExpiry.Add(-tokenSafetyMargin)) {
		c.logger.Debug("reusing cached gigachat token", zap.Time("expires_at", c.tokenExpiry))
		return c.token, nil
	}

	if c.authKey == "" {
		return "", fmt.Errorf("%w: auth key is not configured", ErrAuthorization)
	}

	form := url.Values{}
	form.Set("scope", c.scope)

	ctx, cancel := context.WithTimeout(ctx, oauthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.OAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.NewString())
	req.Header.Set("Authorization", "Basic "+c.authKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthorization, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrAuthorization, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: bad status %s: %s", ErrAuthorization, resp.Status, oauthErrorMessage(body))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrAuthorization, err)
	}

	if parsed.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", ErrAuthorization)
	}

	expiry := time.UnixMilli(parsed.ExpiresAt)
	if parsed.ExpiresAt == 0 {
		expiry = now.Add(30 * time.Minute)
	}

	c.token = parsed.AccessToken
	c.tokenExpiry = expiry

	c.logger.Debug("obtained gigachat access token", zap.Time("expires_at", expiry))

	return c.token, nil
}

func oauthErrorMessage(body []byte) string {
	var payload struct {
		Description string `json:"error_description"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Description != "" {
			return payload.Description
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return "authorization rejected"
}

func apiErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return "request failed"
}
