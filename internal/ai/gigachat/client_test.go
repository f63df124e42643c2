package gigachat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type backendStub struct {
	oauthCalls      atomic.Int64
	completionCalls atomic.Int64

	tokenTTL     time.Duration
	oauthStatus  int
	replyContent string
	apiStatus    int

	lastBasicAuth string
	lastRqUID     string
	lastBearer    string
	lastChatBody  []byte
}

func (s *backendStub) serveOAuth(w http.ResponseWriter, r *http.Request) {
	s.oauthCalls.Add(1)

	s.lastBasicAuth = r.Header.Get("Authorization")
	s.lastRqUID = r.Header.Get("RqUID")

	if s.oauthStatus != 0 && s.oauthStatus != http.StatusOK {
		w.WriteHeader(s.oauthStatus)
		fmt.Fprint(w, `{"error_description": "invalid credentials"}`)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if got := r.PostForm.Get("scope"); got != DefaultScope {
		http.Error(w, "unexpected scope "+got, http.StatusBadRequest)
		return
	}

	expiresAt := time.Now().Add(s.tokenTTL).UnixMilli()
	fmt.Fprintf(w, `{"access_token": "token-%d", "expires_at": %d}`, s.oauthCalls.Load(), expiresAt)
}

func (s *backendStub) serveCompletions(w http.ResponseWriter, r *http.Request) {
	s.completionCalls.Add(1)

	s.lastBearer = r.Header.Get("Authorization")

	body, _ := io.ReadAll(r.Body)
	s.lastChatBody = body

	if s.apiStatus != 0 && s.apiStatus != http.StatusOK {
		w.WriteHeader(s.apiStatus)
		fmt.Fprint(w, `{"error": {"message": "model overloaded"}}`)
		return
	}

	reply := s.replyContent
	if reply == "" {
		reply = `{"score": 8, "verdict": "ok", "matches": [], "quick_wins": []}`
	}

	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": reply}},
		},
	}
	json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, stub *backendStub) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth", stub.serveOAuth)
	mux.HandleFunc("/chat/completions", stub.serveCompletions)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c := New(nil, "dGVzdC1rZXk=", "", "")
	c.OAuthURL = server.URL + "/oauth"
	c.APIURL = server.URL + "/chat/completions"
	c.HTTPClient = server.Client()

	return c
}

func TestCompleteFetchesTokenAndCallsAPI(t *testing.T) {
	stub := &backendStub{tokenTTL: time.Hour}
	c := newTestClient(t, stub)

	content, err := c.Complete(context.Background(), "оцени вакансию")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content, `"score": 8`) {
		t.Fatalf("unexpected content: %q", content)
	}

	if stub.lastBasicAuth != "Basic dGVzdC1rZXk=" {
		t.Fatalf("unexpected basic auth header: %q", stub.lastBasicAuth)
	}
	if stub.lastRqUID == "" {
		t.Fatalf("RqUID header was not sent")
	}
	if stub.lastBearer != "Bearer token-1" {
		t.Fatalf("unexpected bearer header: %q", stub.lastBearer)
	}

	var payload chatRequest
	if err := json.Unmarshal(stub.lastChatBody, &payload); err != nil {
		t.Fatalf("decoding chat request: %v", err)
	}
	if payload.Model != DefaultModel {
		t.Fatalf("unexpected model: %q", payload.Model)
	}
	if payload.Temperature != completionTemperature || payload.MaxTokens != completionMaxTokens {
		t.Fatalf("unexpected sampling params: %+v", payload)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", payload.Messages)
	}
}

func TestTokenReusedWhileFarFromExpiry(t *testing.T) {
	stub := &backendStub{tokenTTL: time.Hour}
	c := newTestClient(t, stub)

	base := time.Now()
	c.now = func() time.Time { return base }

	if _, err := c.Complete(context.Background(), "первый"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// 90 seconds to expiry clears the 60-second margin, so the token
	// from the first call must be reused.
	c.mu.Lock()
	c.tokenExpiry = base.Add(90 * time.Second)
	c.mu.Unlock()

	if _, err := c.Complete(context.Background(), "второй"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if got := stub.oauthCalls.Load(); got != 1 {
		t.Fatalf("expected a single oauth exchange, got %d", got)
	}
}

func TestTokenRefetchedInsideSafetyMargin(t *testing.T) {
	stub := &backendStub{tokenTTL: time.Hour}
	c := newTestClient(t, stub)

	base := time.Now()
	c.now = func() time.Time { return base }

	if _, err := c.Complete(context.Background(), "первый"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// 30 seconds to expiry is inside the margin and counts as expired.
	c.mu.Lock()
	c.tokenExpiry = base.Add(30 * time.Second)
	c.mu.Unlock()

	if _, err := c.Complete(context.Background(), "второй"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if got := stub.oauthCalls.Load(); got != 2 {
		t.Fatalf("expected a second oauth exchange, got %d", got)
	}
	if stub.lastBearer != "Bearer token-2" {
		t.Fatalf("stale token was sent: %q", stub.lastBearer)
	}
}

func TestSetAuthKeyInvalidatesCachedToken(t *testing.T) {
	stub := &backendStub{tokenTTL: time.Hour}
	c := newTestClient(t, stub)

	if _, err := c.Complete(context.Background(), "первый"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	c.SetAuthKey("bmV3LWtleQ==")

	if _, err := c.Complete(context.Background(), "второй"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if got := stub.oauthCalls.Load(); got != 2 {
		t.Fatalf("expected re-authorization after key change, got %d oauth calls", got)
	}
	if stub.lastBasicAuth != "Basic bmV3LWtleQ==" {
		t.Fatalf("old credential was sent: %q", stub.lastBasicAuth)
	}
}

func TestOAuthRejectionIsAuthorizationError(t *testing.T) {
	stub := &backendStub{oauthStatus: http.StatusUnauthorized}
	c := newTestClient(t, stub)

	_, err := c.Complete(context.Background(), "оцени")
	if !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("server message lost: %v", err)
	}
	if stub.completionCalls.Load() != 0 {
		t.Fatalf("completion was attempted without a token")
	}
}

func TestMissingAuthKeyIsAuthorizationError(t *testing.T) {
	stub := &backendStub{tokenTTL: time.Hour}
	c := newTestClient(t, stub)
	c.SetAuthKey("")

	_, err := c.Complete(context.Background(), "оцени")
	if !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
	if stub.oauthCalls.Load() != 0 {
		t.Fatalf("oauth was attempted without a key")
	}
}

func TestCompletionFailureIsNotAuthorizationError(t *testing.T) {
	stub := &backendStub{tokenTTL: time.Hour, apiStatus: http.StatusServiceUnavailable}
	c := newTestClient(t, stub)

	_, err := c.Complete(context.Background(), "оцени")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, ErrAuthorization) {
		t.Fatalf("backend failure misclassified as authorization error: %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("server message lost: %v", err)
	}

	if got := stub.completionCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one attempt, got %d", got)
	}
}
