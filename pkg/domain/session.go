package domain

import (
	"encoding/json"
	"time"
)

// Turn is one completed exchange persisted in session history.
type Turn struct {
	Input     string           `json:"input"`
	Response  string           `json:"response"`
	Category  ResponseCategory `json:"category"`
	State     *TurnState       `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
}

// PendingAction is the suspended high-risk operation a session is waiting
// on. The fingerprint binds the eventual confirmation to this exact
// operation and parameter set; a confirmation for anything else is invalid.
type PendingAction struct {
	Operation   string         `json:"operation"`
	Params      map[string]any `json:"params,omitempty"`
	Fingerprint string         `json:"fingerprint"`
	Risk        RiskLevel      `json:"risk"`
	Consequence *Consequence   `json:"consequence,omitempty"`
	Message     string         `json:"message"`
	IssuedAt    time.Time      `json:"issued_at"`
}

// Session is the persisted conversation record: append-only turn history
// plus the latest pipeline snapshot, which is what lets a later request
// resume exactly at the confirmation gate's suspension point.
type Session struct {
	ID          string        `json:"id"`
	Owner       string        `json:"owner,omitempty"`
	PageContext string        `json:"page_context,omitempty"`
	Status      SessionStatus `json:"status"`
	Pending     *PendingAction `json:"pending,omitempty"`
	Turns       []Turn        `json:"turns"`
	Current     *TurnState    `json:"current,omitempty"`
	Active      bool          `json:"active"`
	LastError   string        `json:"last_error,omitempty"`

	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastActivityAt time.Time `json:"last_activity_at"`

	// Sealed carries the encrypted session payload when an encrypting
	// store middleware is in use. A sealed record keeps only ID, status
	// and timestamps in the clear.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates an active idle session.
func NewSession(id, owner, pageContext string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             id,
		Owner:          owner,
		PageContext:    pageContext,
		Status:         StatusIdle,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastActivityAt: now,
	}
}

// AppendTurn records a completed turn, overwrites the current snapshot and
// refreshes the activity timestamps.
func (s *Session) AppendTurn(state *TurnState) {
	now := time.Now().UTC()
	s.Turns = append(s.Turns, Turn{
		Input:     state.Input,
		Response:  state.Response,
		Category:  state.ResponseCategory,
		State:     state,
		CreatedAt: now,
	})
	s.Current = state
	s.UpdatedAt = now
	s.LastActivityAt = now
}

// Suspend parks the session behind the confirmation gate.
func (s *Session) Suspend(pending *PendingAction) {
	s.Status = StatusAwaitingConfirmation
	s.Pending = pending
}

// Resolve clears the pending action after a decision has been handled.
func (s *Session) Resolve(status SessionStatus) {
	s.Status = status
	s.Pending = nil
}

// Fingerprint produces a canonical identity for an operation invocation.
// json.Marshal sorts map keys, so equal parameter sets always collapse to
// the same fingerprint regardless of insertion order.
func Fingerprint(operation string, params map[string]any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte("{}")
	}
	return operation + "|" + string(raw)
}
