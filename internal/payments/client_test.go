package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

// ============================================
// CreatePaymentIntent Tests
// ============================================

func TestClient_CreatePaymentIntent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/createPaymentIntent", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body := decodeBody(t, r)
		assert.Equal(t, float64(1300), body["amount"])
		assert.Equal(t, "usd", body["currency"])
		w.Write([]byte(`{"clientSecret":"pi_123_secret"}`))
	})

	secret, err := client.CreatePaymentIntent(context.Background(), 1300, "usd", nil)

	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret", secret)
}

func TestClient_CreatePaymentIntent_RejectsNonPositive(t *testing.T) {
	client := NewClient("http://payments.invalid")

	_, err := client.CreatePaymentIntent(context.Background(), -5, "usd", nil)

	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestClient_CreatePaymentIntent_EndpointError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Amount must be positive"}`))
	})

	_, err := client.CreatePaymentIntent(context.Background(), 1300, "usd", nil)

	var platformErr *PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, "Amount must be positive", platformErr.Message)
}

// ============================================
// Identity Endpoint Tests
// ============================================

func TestClient_CreateIdentitySession_OmitsEmptyReturnURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		_, hasReturn := body["return_url"]
		assert.False(t, hasReturn)
		assert.Equal(t, true, body["requireSelfie"])
		w.Write([]byte(`{"id":"vs_1","url":"https://verify.example.com/vs_1"}`))
	})

	session, err := client.CreateIdentitySession(context.Background(), nil, true, "")

	require.NoError(t, err)
	assert.Equal(t, "vs_1", session.ID)
}

func TestClient_GetIdentityStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getIdentityStatus", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "vs_1", body["sessionId"])
		w.Write([]byte(`{"status":"verified","verifiedOutputs":{"first_name":"Anna"}}`))
	})

	status, err := client.GetIdentityStatus(context.Background(), "vs_1")

	require.NoError(t, err)
	assert.Equal(t, "verified", status.Status)
	assert.Equal(t, "Anna", status.VerifiedOutputs["first_name"])
}

// ============================================
// Connect Onboarding Tests
// ============================================

func TestClient_CreateConnectOnboardingLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "https://app.example.com/return", body["return_url"])
		assert.Equal(t, "anna@example.com", body["email"])
		w.Write([]byte(`{"url":"https://connect.example.com/setup/acct_1","accountId":"acct_1"}`))
	})

	link, err := client.CreateConnectOnboardingLink(context.Background(),
		"https://app.example.com/return", "https://app.example.com/refresh",
		"anna@example.com", "US")

	require.NoError(t, err)
	assert.Equal(t, "acct_1", link.AccountID)
	assert.Equal(t, "https://connect.example.com/setup/acct_1", link.URL)
}
