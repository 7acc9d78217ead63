package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client consumes the payments functions endpoints the way the mobile
// apps do: POST/JSON against the deployed functions base URL.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// IdentityStatus is what the status endpoint reports for a session.
type IdentityStatus struct {
	Status          string         `json:"status"`
	VerifiedOutputs map[string]any `json:"verifiedOutputs,omitempty"`
}

// StartedSession is the hosted page plus the session id kept for polling.
type StartedSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// OnboardingLink is a hosted connect-onboarding URL and the express
// account created for it.
type OnboardingLink struct {
	URL       string `json:"url"`
	AccountID string `json:"accountId"`
}

// CreatePaymentIntent returns the client secret for a new intent.
// Implements the order package's IntentCreator.
func (c *Client) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (string, error) {
	if amountCents <= 0 {
		return "", ErrInvalidAmount
	}

	var out struct {
		ClientSecret string `json:"clientSecret"`
	}
	err := c.post(ctx, "/createPaymentIntent", map[string]any{
		"amount":   amountCents,
		"currency": currency,
		"metadata": metadata,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ClientSecret, nil
}

// CreateIdentitySession starts a verification session. returnURL may be
// empty; the plain-browser flow omits it.
func (c *Client) CreateIdentitySession(ctx context.Context, metadata map[string]string, requireSelfie bool, returnURL string) (*StartedSession, error) {
	body := map[string]any{
		"metadata":      metadata,
		"requireSelfie": requireSelfie,
	}
	if returnURL != "" {
		body["return_url"] = returnURL
	}

	var out StartedSession
	if err := c.post(ctx, "/createIdentitySession", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetIdentityStatus polls one session.
func (c *Client) GetIdentityStatus(ctx context.Context, sessionID string) (*IdentityStatus, error) {
	var out IdentityStatus
	err := c.post(ctx, "/getIdentityStatus", map[string]any{
		"sessionId": sessionID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateConnectOnboardingLink asks the functions to open a fresh express
// account and mint its onboarding URL.
func (c *Client) CreateConnectOnboardingLink(ctx context.Context, returnURL, refreshURL, email, country string) (*OnboardingLink, error) {
	var out OnboardingLink
	err := c.post(ctx, "/createConnectOnboardingLink", map[string]any{
		"return_url":  returnURL,
		"refresh_url": refreshURL,
		"email":       email,
		"country":     country,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("payments endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &PlatformError{Status: resp.StatusCode, Message: endpointErrorMessage(respBody)}
	}
	return json.Unmarshal(respBody, out)
}

func endpointErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
