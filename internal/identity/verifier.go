// Package identity drives the hosted document-verification flow: create a
// remote session, open the hosted page, then poll the status endpoint to a
// terminal state.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/homemade-market/internal/payments"
)

type State string

const (
	StateIdle          State = "idle"
	StateStarting      State = "starting"
	StateOpened        State = "opened"
	StatePolling       State = "polling"
	StateVerified      State = "verified"
	StateCanceled      State = "canceled"
	StateRequiresInput State = "requires_input"
	StateProcessing    State = "processing"
	StateError         State = "error"
)

var (
	ErrVerificationInFlight = errors.New("a verification is already running")
	ErrNoSession            = errors.New("no verification session is held")
)

// SessionAPI is the slice of the payments endpoints the verifier needs.
// *payments.Client satisfies it.
type SessionAPI interface {
	CreateIdentitySession(ctx context.Context, metadata map[string]string, requireSelfie bool, returnURL string) (*payments.StartedSession, error)
	GetIdentityStatus(ctx context.Context, sessionID string) (*payments.IdentityStatus, error)
}

// Opener shows the hosted verification page and returns when the user has
// dismissed it. There is no guaranteed callback from the hosted page, so
// dismissal is the only signal polling can start.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Options tunes one verifier. ReturnURL is only forwarded when the opener
// is an auth-session variant that can receive the deep link back.
type Options struct {
	Opener        Opener
	ReturnURL     string
	RequireSelfie bool
	Metadata      map[string]string
	PollInterval  time.Duration
	MaxAttempts   int
}

// Verifier runs the verification flow as one cancellable task. Start is
// synchronous: it returns the terminal state (or processing, when the
// attempt budget runs out) and refuses to run twice concurrently.
type Verifier struct {
	api  SessionAPI
	opts Options

	mu        sync.Mutex
	running   bool
	state     State
	lastError string
	sessionID string
}

func NewVerifier(api SessionAPI, opts Options) *Verifier {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 20
	}
	return &Verifier{api: api, opts: opts, state: StateIdle}
}

// State returns the current state.
func (v *Verifier) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// LastError returns the message recorded by the most recent failure.
func (v *Verifier) LastError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastError
}

// SessionID returns the id of the session held in memory, if any.
func (v *Verifier) SessionID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sessionID
}

// Start runs the whole flow: create a session, open the hosted page, poll
// until a terminal status or the attempt budget is exhausted. Exhaustion
// on processing ends in StateProcessing, which is pending rather than an
// error. Cancelling ctx stops the task between polls.
func (v *Verifier) Start(ctx context.Context) (State, error) {
	v.mu.Lock()
	if v.running {
		v.mu.Unlock()
		return v.state, ErrVerificationInFlight
	}
	v.running = true
	v.state = StateStarting
	v.lastError = ""
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.running = false
		v.mu.Unlock()
	}()

	state, err := v.run(ctx)
	if err != nil {
		v.setError(err)
		return StateError, err
	}
	v.setState(state)
	return state, nil
}

func (v *Verifier) run(ctx context.Context) (State, error) {
	session, err := v.api.CreateIdentitySession(ctx, v.opts.Metadata, v.opts.RequireSelfie, v.opts.ReturnURL)
	if err != nil {
		return StateError, fmt.Errorf("failed to create verification session: %w", err)
	}

	v.mu.Lock()
	v.sessionID = session.ID
	v.state = StateOpened
	v.mu.Unlock()

	// Open blocks until the user dismisses the hosted page.
	if err := v.opts.Opener.Open(ctx, session.URL); err != nil {
		return StateError, fmt.Errorf("failed to open verification page: %w", err)
	}

	v.setState(StatePolling)
	return v.poll(ctx, session.ID)
}

func (v *Verifier) poll(ctx context.Context, sessionID string) (State, error) {
	for attempt := 0; attempt < v.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, v.opts.PollInterval); err != nil {
				return StateError, err
			}
		}

		status, err := v.api.GetIdentityStatus(ctx, sessionID)
		if err != nil {
			return StateError, fmt.Errorf("failed to fetch verification status: %w", err)
		}
		if terminal, ok := terminalState(status.Status); ok {
			return terminal, nil
		}
	}
	// Still processing after the attempt budget: pending, not an error.
	return StateProcessing, nil
}

// Recheck performs one out-of-band status fetch against the held session.
// Used when a deep link returns control to the app mid-flow.
func (v *Verifier) Recheck(ctx context.Context) (State, error) {
	v.mu.Lock()
	sessionID := v.sessionID
	v.mu.Unlock()
	if sessionID == "" {
		return StateIdle, ErrNoSession
	}

	status, err := v.api.GetIdentityStatus(ctx, sessionID)
	if err != nil {
		v.setError(err)
		return StateError, err
	}
	if terminal, ok := terminalState(status.Status); ok {
		v.setState(terminal)
		return terminal, nil
	}
	return v.State(), nil
}

func (v *Verifier) setState(s State) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

func (v *Verifier) setError(err error) {
	v.mu.Lock()
	v.state = StateError
	v.lastError = err.Error()
	v.mu.Unlock()
}

// terminalState maps a remote status to a terminal verifier state.
// processing is the only non-terminal status.
func terminalState(status string) (State, bool) {
	switch status {
	case "verified":
		return StateVerified, true
	case "canceled":
		return StateCanceled, true
	case "requires_input":
		return StateRequiresInput, true
	default:
		return StateProcessing, false
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
