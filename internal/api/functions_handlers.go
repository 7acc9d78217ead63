package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/homemade-market/internal/payments"
	"github.com/example/homemade-market/internal/proxy"
)

// FunctionHandlers exposes the payment-platform endpoints the mobile
// clients call directly, plus the generic upstream proxy. They are
// mounted CORS-open and unauthenticated; the platform secret never
// leaves this process.
type FunctionHandlers struct {
	platform   *payments.Platform
	dispatcher *proxy.Dispatcher
}

func NewFunctionHandlers(platform *payments.Platform, dispatcher *proxy.Dispatcher) *FunctionHandlers {
	return &FunctionHandlers{
		platform:   platform,
		dispatcher: dispatcher,
	}
}

func (h *FunctionHandlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountCents int64             `json:"amount_cents"`
		Currency    string            `json:"currency"`
		Metadata    map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	intent, err := h.platform.CreatePaymentIntent(r.Context(), req.AmountCents, req.Currency, req.Metadata)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidAmount) {
			respondJSONError(w, "Amount must be positive", http.StatusBadRequest)
			return
		}
		respondPlatformError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"id":            intent.ID,
		"client_secret": intent.ClientSecret,
	})
}

func (h *FunctionHandlers) CreateIdentitySession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Metadata      map[string]string `json:"metadata"`
		RequireSelfie bool              `json:"require_selfie"`
		ReturnURL     string            `json:"return_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.platform.CreateIdentitySession(r.Context(), req.Metadata, req.RequireSelfie, req.ReturnURL)
	if err != nil {
		respondPlatformError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"id":  session.ID,
		"url": session.URL,
	})
}

func (h *FunctionHandlers) GetIdentityStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		respondJSONError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	session, err := h.platform.GetIdentitySession(r.Context(), req.SessionID)
	if err != nil {
		respondPlatformError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":           session.Status,
		"verified_outputs": session.VerifiedOutputs,
	})
}

// CreateConnectOnboardingLink creates a fresh seller payout account and
// returns its onboarding URL. Accounts are not reused across calls.
func (h *FunctionHandlers) CreateConnectOnboardingLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Country    string `json:"country"`
		ReturnURL  string `json:"return_url"`
		RefreshURL string `json:"refresh_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.platform.CreateConnectAccount(r.Context(), req.Email, req.Country)
	if err != nil {
		respondPlatformError(w, err)
		return
	}

	link, err := h.platform.CreateAccountLink(r.Context(), account.ID, req.ReturnURL, req.RefreshURL)
	if err != nil {
		respondPlatformError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"account_id": account.ID,
		"url":        link.URL,
	})
}

// Proxy dispatches a named upstream call. The response is always HTTP
// 200 with an ok/error envelope; upstream failures surface in the
// envelope, not the status code.
func (h *FunctionHandlers) Proxy(w http.ResponseWriter, r *http.Request) {
	var req proxy.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusOK, proxy.Envelope{OK: false, Error: "invalid request body"})
		return
	}

	respondJSON(w, http.StatusOK, h.dispatcher.Dispatch(r.Context(), req))
}

func respondPlatformError(w http.ResponseWriter, err error) {
	var platformErr *payments.PlatformError
	if errors.As(err, &platformErr) {
		respondJSONError(w, platformErr.Message, http.StatusBadGateway)
		return
	}
	respondJSONError(w, err.Error(), http.StatusInternalServerError)
}
