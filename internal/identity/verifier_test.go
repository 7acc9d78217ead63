package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/homemade-market/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionAPI scripts the status endpoint: each GetIdentityStatus call
// pops the next status from the sequence, repeating the last one.
type fakeSessionAPI struct {
	mu          sync.Mutex
	statuses    []string
	createErr   error
	statusErr   error
	createCalls int
	statusCalls int
}

func (f *fakeSessionAPI) CreateIdentitySession(ctx context.Context, metadata map[string]string, requireSelfie bool, returnURL string) (*payments.StartedSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &payments.StartedSession{ID: "vs_test_123", URL: "https://verify.example.com/vs_test_123"}, nil
}

func (f *fakeSessionAPI) GetIdentityStatus(ctx context.Context, sessionID string) (*payments.IdentityStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	idx := f.statusCalls - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return &payments.IdentityStatus{Status: f.statuses[idx]}, nil
}

type fakeOpener struct {
	mu      sync.Mutex
	urls    []string
	openErr error
	block   chan struct{} // when set, Open waits for it to close
}

func (o *fakeOpener) Open(ctx context.Context, url string) error {
	o.mu.Lock()
	o.urls = append(o.urls, url)
	block := o.block
	o.mu.Unlock()
	if block != nil {
		<-block
	}
	return o.openErr
}

func newTestVerifier(api *fakeSessionAPI, opener *fakeOpener, maxAttempts int) *Verifier {
	return NewVerifier(api, Options{
		Opener:       opener,
		PollInterval: time.Millisecond,
		MaxAttempts:  maxAttempts,
	})
}

// ============================================
// Start Tests
// ============================================

func TestVerifier_Start_VerifiedAfterPolling(t *testing.T) {
	api := &fakeSessionAPI{statuses: []string{"processing", "processing", "verified"}}
	opener := &fakeOpener{}
	v := newTestVerifier(api, opener, 10)

	state, err := v.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateVerified, state)
	assert.Equal(t, StateVerified, v.State())
	assert.Equal(t, "vs_test_123", v.SessionID())
	// Polling stops at the first terminal status
	assert.Equal(t, 3, api.statusCalls)
	require.Len(t, opener.urls, 1)
	assert.Equal(t, "https://verify.example.com/vs_test_123", opener.urls[0])
}

func TestVerifier_Start_TerminalStates(t *testing.T) {
	tests := []struct {
		status string
		want   State
	}{
		{"verified", StateVerified},
		{"canceled", StateCanceled},
		{"requires_input", StateRequiresInput},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			api := &fakeSessionAPI{statuses: []string{tt.status}}
			v := newTestVerifier(api, &fakeOpener{}, 10)

			state, err := v.Start(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, state)
			// The first poll runs without waiting for the interval
			assert.Equal(t, 1, api.statusCalls)
		})
	}
}

func TestVerifier_Start_ExhaustionIsPendingNotError(t *testing.T) {
	api := &fakeSessionAPI{statuses: []string{"processing"}}
	v := newTestVerifier(api, &fakeOpener{}, 5)

	state, err := v.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateProcessing, state)
	assert.Equal(t, 5, api.statusCalls)
	assert.Empty(t, v.LastError())
}

func TestVerifier_Start_SessionCreationFails(t *testing.T) {
	api := &fakeSessionAPI{createErr: errors.New("upstream down")}
	opener := &fakeOpener{}
	v := newTestVerifier(api, opener, 5)

	state, err := v.Start(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateError, state)
	assert.Contains(t, v.LastError(), "upstream down")
	assert.Empty(t, opener.urls)
}

func TestVerifier_Start_OpenFails(t *testing.T) {
	api := &fakeSessionAPI{statuses: []string{"verified"}}
	opener := &fakeOpener{openErr: errors.New("no browser")}
	v := newTestVerifier(api, opener, 5)

	state, err := v.Start(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateError, state)
	assert.Zero(t, api.statusCalls)
}

func TestVerifier_Start_StatusFetchFails(t *testing.T) {
	api := &fakeSessionAPI{statusErr: errors.New("network")}
	v := newTestVerifier(api, &fakeOpener{}, 5)

	state, err := v.Start(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateError, state)
}

func TestVerifier_Start_RefusesConcurrentRun(t *testing.T) {
	api := &fakeSessionAPI{statuses: []string{"verified"}}
	opener := &fakeOpener{block: make(chan struct{})}
	v := newTestVerifier(api, opener, 5)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := v.Start(context.Background())
		assert.NoError(t, err)
	}()

	// Wait until the first run is parked inside Open
	require.Eventually(t, func() bool {
		opener.mu.Lock()
		defer opener.mu.Unlock()
		return len(opener.urls) == 1
	}, time.Second, time.Millisecond)

	_, err := v.Start(context.Background())
	assert.ErrorIs(t, err, ErrVerificationInFlight)

	close(opener.block)
	<-done

	// After the first run finishes, a new one is allowed
	_, err = v.Start(context.Background())
	assert.NoError(t, err)
}

func TestVerifier_Start_ContextCancelledBetweenPolls(t *testing.T) {
	api := &fakeSessionAPI{statuses: []string{"processing"}}
	v := NewVerifier(api, Options{
		Opener:       &fakeOpener{},
		PollInterval: time.Hour,
		MaxAttempts:  5,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	state, err := v.Start(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateError, state)
	// One immediate poll happened before the long sleep
	assert.Equal(t, 1, api.statusCalls)
}

// ============================================
// Recheck Tests
// ============================================

func TestVerifier_Recheck_NoSession(t *testing.T) {
	v := newTestVerifier(&fakeSessionAPI{}, &fakeOpener{}, 5)

	_, err := v.Recheck(context.Background())

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerifier_Recheck_TerminalUpdatesState(t *testing.T) {
	api := &fakeSessionAPI{statuses: []string{"processing", "verified"}}
	v := newTestVerifier(api, &fakeOpener{}, 1)

	// Exhausts the single attempt and parks in processing
	state, err := v.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateProcessing, state)

	state, err = v.Recheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateVerified, state)
	assert.Equal(t, StateVerified, v.State())
}

func TestVerifier_Recheck_NonTerminalKeepsState(t *testing.T) {
	api := &fakeSessionAPI{statuses: []string{"processing"}}
	v := newTestVerifier(api, &fakeOpener{}, 1)

	_, err := v.Start(context.Background())
	require.NoError(t, err)

	state, err := v.Recheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateProcessing, state)
}
