// Package payments talks to the hosted payments platform. The Platform
// client is the server-side wrapper used by the functions endpoints; the
// Client type is the thin consumer of those endpoints used by checkout and
// identity verification.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrMissingAPIKey = errors.New("payments API key is required")
)

// PlatformError carries the upstream failure message and HTTP status.
type PlatformError struct {
	Status  int
	Message string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("payments platform returned %d: %s", e.Status, e.Message)
}

// Platform calls the upstream payments REST API with form-encoded bodies
// and a fixed request timeout. No call is retried.
type Platform struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPlatform(baseURL, apiKey string) (*Platform, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Platform{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
	}, nil
}

// PaymentIntent is the subset of the platform's intent object the clients
// need.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// IdentitySession tracks a hosted document-verification flow.
type IdentitySession struct {
	ID              string         `json:"id"`
	Status          string         `json:"status"`
	URL             string         `json:"url"`
	VerifiedOutputs map[string]any `json:"verified_outputs,omitempty"`
}

// ConnectAccount is a seller's express payout account.
type ConnectAccount struct {
	ID string `json:"id"`
}

// AccountLink is a one-time onboarding URL for a connect account.
type AccountLink struct {
	URL string `json:"url"`
}

// CreatePaymentIntent opens an intent for the given amount. Amount is in
// the currency's smallest unit.
func (p *Platform) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var intent PaymentIntent
	if err := p.post(ctx, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// CreateIdentitySession starts a document verification session. returnURL
// is forwarded only when supplied; the mobile client deliberately omits it
// to avoid the HTTPS-callback requirement.
func (p *Platform) CreateIdentitySession(ctx context.Context, metadata map[string]string, requireSelfie bool, returnURL string) (*IdentitySession, error) {
	form := url.Values{}
	form.Set("type", "document")
	if requireSelfie {
		form.Set("options[document][require_matching_selfie]", "true")
	}
	if returnURL != "" {
		form.Set("return_url", returnURL)
	}
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var session IdentitySession
	if err := p.post(ctx, "/v1/identity/verification_sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetIdentitySession fetches the current status of a verification session.
func (p *Platform) GetIdentitySession(ctx context.Context, sessionID string) (*IdentitySession, error) {
	var session IdentitySession
	if err := p.get(ctx, "/v1/identity/verification_sessions/"+url.PathEscape(sessionID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateConnectAccount opens a new express account. A fresh account is
// created on every call; reusing an existing account is the caller's
// responsibility.
func (p *Platform) CreateConnectAccount(ctx context.Context, email, country string) (*ConnectAccount, error) {
	form := url.Values{}
	form.Set("type", "express")
	if email != "" {
		form.Set("email", email)
	}
	if country != "" {
		form.Set("country", country)
	}

	var account ConnectAccount
	if err := p.post(ctx, "/v1/accounts", form, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccountLink builds the hosted onboarding URL for an account.
func (p *Platform) CreateAccountLink(ctx context.Context, accountID, returnURL, refreshURL string) (*AccountLink, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("type", "account_onboarding")
	form.Set("return_url", returnURL)
	form.Set("refresh_url", refreshURL)

	var link AccountLink
	if err := p.post(ctx, "/v1/account_links", form, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (p *Platform) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req, out)
}

func (p *Platform) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	return p.do(req, out)
}

func (p *Platform) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("payments platform request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &PlatformError{Status: resp.StatusCode, Message: platformErrorMessage(body)}
	}
	return json.Unmarshal(body, out)
}

func platformErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(body))
}
