package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlatform(t *testing.T, handler http.HandlerFunc) (*Platform, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	platform, err := NewPlatform(server.URL, "sk_test_abc")
	require.NoError(t, err)
	return platform, server
}

// ============================================
// Constructor Tests
// ============================================

func TestNewPlatform_RequiresAPIKey(t *testing.T) {
	_, err := NewPlatform("https://api.payments.example.com", "")

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

// ============================================
// CreatePaymentIntent Tests
// ============================================

func TestPlatform_CreatePaymentIntent(t *testing.T) {
	platform, _ := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1300", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))
		assert.Equal(t, "order-1", r.PostForm.Get("metadata[order_id]"))

		w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret"}`))
	})

	intent, err := platform.CreatePaymentIntent(context.Background(), 1300, "",
		map[string]string{"order_id": "order-1"})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
}

func TestPlatform_CreatePaymentIntent_RejectsNonPositive(t *testing.T) {
	called := false
	platform, _ := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := platform.CreatePaymentIntent(context.Background(), 0, "usd", nil)

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.False(t, called)
}

func TestPlatform_CreatePaymentIntent_UpstreamError(t *testing.T) {
	platform, _ := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	})

	_, err := platform.CreatePaymentIntent(context.Background(), 1300, "usd", nil)

	var platformErr *PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, http.StatusPaymentRequired, platformErr.Status)
	assert.Equal(t, "Your card was declined.", platformErr.Message)
}

// ============================================
// Identity Session Tests
// ============================================

func TestPlatform_CreateIdentitySession(t *testing.T) {
	platform, _ := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/identity/verification_sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "document", r.PostForm.Get("type"))
		assert.Equal(t, "true", r.PostForm.Get("options[document][require_matching_selfie]"))
		// returnURL omitted when empty
		assert.Empty(t, r.PostForm.Get("return_url"))

		w.Write([]byte(`{"id":"vs_1","status":"requires_input","url":"https://verify.example.com/vs_1"}`))
	})

	session, err := platform.CreateIdentitySession(context.Background(), nil, true, "")

	require.NoError(t, err)
	assert.Equal(t, "vs_1", session.ID)
	assert.Equal(t, "https://verify.example.com/vs_1", session.URL)
}

func TestPlatform_CreateIdentitySession_ForwardsReturnURL(t *testing.T) {
	platform, _ := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "myapp://verified", r.PostForm.Get("return_url"))
		w.Write([]byte(`{"id":"vs_1","status":"requires_input","url":"https://verify.example.com/vs_1"}`))
	})

	_, err := platform.CreateIdentitySession(context.Background(), nil, false, "myapp://verified")

	require.NoError(t, err)
}

func TestPlatform_GetIdentitySession(t *testing.T) {
	platform, _ := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/identity/verification_sessions/vs_1", r.URL.Path)
		w.Write([]byte(`{"id":"vs_1","status":"verified","verified_outputs":{"first_name":"Anna"}}`))
	})

	session, err := platform.GetIdentitySession(context.Background(), "vs_1")

	require.NoError(t, err)
	assert.Equal(t, "verified", session.Status)
	assert.Equal(t, "Anna", session.VerifiedOutputs["first_name"])
}

// ============================================
// Connect Account Tests
// ============================================

func TestPlatform_CreateConnectAccountAndLink(t *testing.T) {
	platform, _ := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/v1/accounts":
			assert.Equal(t, "express", r.PostForm.Get("type"))
			assert.Equal(t, "anna@example.com", r.PostForm.Get("email"))
			w.Write([]byte(`{"id":"acct_1"}`))
		case "/v1/account_links":
			assert.Equal(t, "acct_1", r.PostForm.Get("account"))
			assert.Equal(t, "account_onboarding", r.PostForm.Get("type"))
			assert.Equal(t, "https://app.example.com/return", r.PostForm.Get("return_url"))
			w.Write([]byte(`{"url":"https://connect.example.com/setup/acct_1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	account, err := platform.CreateConnectAccount(ctx, "anna@example.com", "US")
	require.NoError(t, err)

	link, err := platform.CreateAccountLink(ctx, account.ID,
		"https://app.example.com/return", "https://app.example.com/refresh")
	require.NoError(t, err)
	assert.Equal(t, "https://connect.example.com/setup/acct_1", link.URL)
}

// ============================================
// Error Message Tests
// ============================================

func TestPlatformErrorMessage_FallsBackToRawBody(t *testing.T) {
	platform, _ := newTestPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway\n"))
	})

	_, err := platform.CreateConnectAccount(context.Background(), "", "")

	var platformErr *PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, "bad gateway", platformErr.Message)
}
