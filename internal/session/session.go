package session

import (
	"context"
	"errors"
	"incomify/internal/ml"
	"incomify/internal/models"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBusy is returned when a submit or simulate is attempted while another
// request for the same session is still in flight. Primary and what-if
// submissions share one gate, so the two can never overlap.
var ErrBusy = errors.New("a prediction is already in flight for this session")

// ErrNoBaseline is returned when a what-if operation runs before any
// successful primary prediction has seeded the what-if form.
var ErrNoBaseline = errors.New("no baseline prediction yet; submit the form first")

// ValidationError wraps a form coercion failure. Validation failures block
// submission before any network call is issued.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// genericFailure is shown when the upstream error carries no detail field.
const genericFailure = "Prediction failed"

// Session holds the form, what-if, and result state for one client session.
// It is the server-side counterpart of the original single view component's
// local state.
type Session struct {
	id      string
	touched atomic.Int64 // unix nanos of the last store access

	mu           sync.Mutex
	input        models.InputForm
	result       *models.PredictionResult
	whatIf       *models.InputForm
	whatIfResult *models.PredictionResult
	loading      bool
	lastError    string
}

// State is a point-in-time copy of a session, safe to render.
type State struct {
	ID           string                   `json:"id"`
	Input        models.InputForm         `json:"input"`
	Result       *models.PredictionResult `json:"result,omitempty"`
	WhatIf       *models.InputForm        `json:"what_if,omitempty"`
	WhatIfResult *models.PredictionResult `json:"what_if_result,omitempty"`
	Loading      bool                     `json:"loading"`
	LastError    string                   `json:"last_error,omitempty"`
}

func New(id string) *Session {
	s := &Session{id: id}
	s.touch()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) touch() {
	s.touched.Store(time.Now().UnixNano())
}

// Snapshot returns a copy of the current state. Result pointers are shared
// but treated as immutable once stored.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:           s.id,
		Input:        s.input,
		Result:       s.result,
		WhatIf:       s.whatIf,
		WhatIfResult: s.whatIfResult,
		Loading:      s.loading,
		LastError:    s.lastError,
	}
}

// UpdateInput merges a partial update into the primary form. Changing the
// primary form never touches the seeded what-if copy.
func (s *Session) UpdateInput(u models.FieldUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.Merge(u)
}

// UpdateWhatIf merges a partial update into the what-if form, independent of
// the primary form and the primary result.
func (s *Session) UpdateWhatIf(u models.FieldUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.whatIf == nil {
		return ErrNoBaseline
	}
	s.whatIf.Merge(u)
	return nil
}

// Submit runs the primary prediction: it coerces the form, clears the
// previous error and result, and calls the upstream service. On success the
// what-if form is seeded with a copy of the submitted inputs and any stale
// what-if result is cleared. The loading flag is cleared on both outcomes.
// The returned payload is the coerced request that actually went upstream;
// form edits landing while the request is in flight do not affect it.
func (s *Session) Submit(ctx context.Context, client ml.MLClient) (*models.PredictionResult, *models.PredictionPayload, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, nil, ErrBusy
	}

	payload, err := s.input.Coerce()
	if err != nil {
		s.mu.Unlock()
		return nil, nil, &ValidationError{Err: err}
	}

	s.lastError = ""
	s.result = nil
	s.loading = true
	submitted := s.input
	s.mu.Unlock()

	result, err := client.Predict(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastError = upstreamMessage(err)
		return nil, nil, err
	}

	s.result = result
	seed := submitted
	s.whatIf = &seed
	s.whatIfResult = nil
	return result, payload, nil
}

// Simulate runs a what-if prediction through the same coercion and request
// path as Submit, storing the response as the what-if result. The primary
// form and result are never modified. Like Submit, the returned payload is
// exactly what was sent upstream.
func (s *Session) Simulate(ctx context.Context, client ml.MLClient) (*models.PredictionResult, *models.PredictionPayload, error) {
	s.mu.Lock()
	if s.whatIf == nil {
		s.mu.Unlock()
		return nil, nil, ErrNoBaseline
	}
	if s.loading {
		s.mu.Unlock()
		return nil, nil, ErrBusy
	}

	payload, err := s.whatIf.Coerce()
	if err != nil {
		s.mu.Unlock()
		return nil, nil, &ValidationError{Err: err}
	}

	s.lastError = ""
	s.loading = true
	s.mu.Unlock()

	result, err := client.Predict(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastError = upstreamMessage(err)
		return nil, nil, err
	}

	s.whatIfResult = result
	return result, payload, nil
}

// upstreamMessage extracts the user-facing message for a failed prediction:
// the upstream detail when present, otherwise a generic one.
func upstreamMessage(err error) string {
	var respErr *ml.ResponseError
	if errors.As(err, &respErr) && respErr.Detail != "" {
		return respErr.Detail
	}
	return genericFailure
}

// Store keeps the live sessions for this process. Nothing is persisted:
// a session lives until the process exits or the sweeper evicts it for
// being idle.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if ok {
		s.touch()
	}
	return s, ok
}

func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		s.touch()
		return s
	}
	s := New(id)
	st.sessions[id] = s
	return s
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep evicts sessions that have not been accessed for longer than ttl and
// reports how many were removed. Anything in flight was touched when its
// request arrived, so it survives any reasonable ttl.
func (st *Store) Sweep(ttl time.Duration) int {
	now := time.Now()
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if now.Sub(time.Unix(0, s.touched.Load())) > ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps the store every interval until the returned stop
// function is called.
func (st *Store) StartSweeper(interval, ttl time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := st.Sweep(ttl); n > 0 {
					log.Printf("Evicted %d idle sessions", n)
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}
