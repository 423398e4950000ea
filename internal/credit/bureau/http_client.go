// internal/credit/bureau/http_client.go
package bureau

import (
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

	commonhttp "lending-workers/internal/common/http"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
)

// HTTPClient talks to a real credit bureau over its soft-pull API using
// the client-credentials token flow. Tokens are cached until expiry.
type HTTPClient struct {
	provider   string
	endpoint   string
	apiKey     string
	apiSecret  string
	httpClient *commonhttp.Client
	logger     logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type softPullRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	SSN       string `json:"ssn"`
	DOB       string `json:"dob"`
	PullType  string `json:"pullType"`
}

type softPullResponse struct {
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}

// NewHTTPClient creates a bureau client bound to one provider endpoint.
// timeout caps the whole inquiry, token fetch included.
func NewHTTPClient(provider, endpoint, apiKey, apiSecret string, timeout time.Duration, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		provider:   provider,
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: commonhttp.NewClient(timeout),
		logger:     log,
	}
}

// Inquire performs one soft pull. Failures are classified into the
// package's error taxonomy; the client never retries.
func (c *HTTPClient) Inquire(ctx context.Context, inq Inquiry) (*models.CreditAssessment, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(softPullRequest{
		FirstName: inq.FirstName,
		LastName:  inq.LastName,
		SSN:       inq.SSN,
		DOB:       inq.DOB,
		PullType:  "soft",
	})
	if err != nil {
		return nil, &Error{Kind: KindBureauRejected, Provider: c.provider, Err: fmt.Errorf("failed to encode inquiry: %w", err)}
	}

	resp, err := c.httpClient.PostJSON(ctx, c.endpoint+"/v1/credit-reports", payload, token)
	if err != nil {
		return nil, c.classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.invalidateToken()
		return nil, &Error{Kind: KindAuthFailure, Provider: c.provider, Err: fmt.Errorf("inquiry rejected with status %d", resp.StatusCode)}
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, &Error{Kind: KindBureauRejected, Provider: c.provider, Err: fmt.Errorf("inquiry failed with status %d: %s", resp.StatusCode, string(body))}
	}

	var pull softPullResponse
	if err := json.NewDecoder(resp.Body).Decode(&pull); err != nil {
		return nil, &Error{Kind: KindBureauRejected, Provider: c.provider, Err: fmt.Errorf("failed to decode inquiry response: %w", err)}
	}
	if pull.Score < 300 || pull.Score > 850 {
		return nil, &Error{Kind: KindBureauRejected, Provider: c.provider, Err: fmt.Errorf("score %d outside valid range", pull.Score)}
	}

	c.logger.Info("credit inquiry completed", map[string]interface{}{
		"provider":      c.provider,
		"applicationId": inq.ApplicationID,
	})

	return &models.CreditAssessment{
		FicoScore: pull.Score,
		Factors:   pull.Factors,
		Approved:  pull.Score >= models.ApprovedHintFloor,
		Provider:  c.provider,
		PulledAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// getAccessToken fetches a token via the client-credentials flow, reusing
// a cached one until expiry. The lock is held across the refresh so
// concurrent jobs share one token exchange.
func (c *HTTPClient) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokenExpiry.After(time.Now()) && c.accessToken != "" {
		return c.accessToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.apiKey)
	data.Set("client_secret", c.apiSecret)

	resp, err := c.httpClient.PostForm(ctx, c.endpoint+"/oauth/token", data)
	if err != nil {
		return "", c.classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &Error{Kind: KindAuthFailure, Provider: c.provider, Err: fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", &Error{Kind: KindAuthFailure, Provider: c.provider, Err: fmt.Errorf("failed to decode token response: %w", err)}
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *HTTPClient) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

func (c *HTTPClient) classifyTransportError(err error) error {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Provider: c.provider, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Provider: c.provider, Err: err}
	}
	return &Error{Kind: KindBureauRejected, Provider: c.provider, Err: err}
}
