package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mealplan-auth/app/domain"
)

// DefaultBaseURL is Google's OAuth2 token verification endpoint
const DefaultBaseURL = "https://oauth2.googleapis.com"

const defaultTimeout = 10 * time.Second

// Config holds verifier configuration
type Config struct {
	// ClientID is the OAuth client the assertion must be issued for
	ClientID string
	// BaseURL overrides the verification endpoint, used in tests
	BaseURL string
	// Timeout bounds the upstream verification call
	Timeout time.Duration
}

// Verifier verifies Google-issued ID tokens against the tokeninfo
// endpoint. Implements port.IdentityVerifier.
type Verifier struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// tokenInfo is the subset of the tokeninfo response this service reads
type tokenInfo struct {
	Audience      string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// NewVerifier creates a new Google identity verifier
func NewVerifier(cfg Config, logger *slog.Logger) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("google client ID is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !isValidURL(baseURL) {
		return nil, fmt.Errorf("invalid google verification URL: %s", baseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Verifier{
		clientID: cfg.ClientID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "google_verifier"),
	}, nil
}

// VerifyAssertion verifies an assertion token with Google and extracts
// the canonical identity. Any verification failure maps to
// domain.ErrInvalidAssertion without carrying upstream detail; transport
// failure and timeout map to domain.ErrUpstreamUnavailable so the caller
// can decide whether to retry.
func (v *Verifier) VerifyAssertion(ctx context.Context, assertionToken string) (*domain.GoogleIdentity, error) {
	if assertionToken == "" {
		return nil, domain.ErrInvalidAssertion
	}

	// The token travels in the form body, not the query string, so it
	// never ends up in access logs.
	form := url.Values{"id_token": {assertionToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/tokeninfo", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build tokeninfo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn("tokeninfo request failed", "error", err)
		return nil, domain.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		v.logger.Warn("tokeninfo response read failed", "error", err)
		return nil, domain.ErrUpstreamUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		// Upstream rejects expired, malformed and wrong-audience tokens
		// with a 4xx; detail stays in the logs, redacted from callers.
		v.logger.Info("assertion rejected by upstream", "status", resp.StatusCode)
		return nil, domain.ErrInvalidAssertion
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		v.logger.Warn("tokeninfo response unmarshal failed", "error", err)
		return nil, domain.ErrUpstreamUnavailable
	}

	if info.Audience != v.clientID {
		v.logger.Info("assertion audience mismatch")
		return nil, domain.ErrInvalidAssertion
	}
	if info.Email == "" || info.EmailVerified != "true" {
		v.logger.Info("assertion carries no verified email")
		return nil, domain.ErrInvalidAssertion
	}

	return &domain.GoogleIdentity{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// isValidURL validates if a URL is properly formatted
func isValidURL(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
