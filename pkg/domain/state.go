package domain

import (
	"time"
)

// Media is one inbound binary blob (voice note, screenshot, clip).
// Data marshals as base64 in JSON, which is how the HTTP adapter carries it.
type Media struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Comprehension is the normalizer's structured reading of a multimodal
// utterance. When the comprehension capability is unreachable the record is
// still produced with Degraded set and ConfidenceLow, so downstream stages
// can attempt a best-effort clarification instead of aborting the turn.
type Comprehension struct {
	Modality   Modality       `json:"modality"`
	Gloss      string         `json:"gloss"`
	Entities   map[string]any `json:"entities,omitempty"`
	ActionHint string         `json:"action_hint,omitempty"`
	Confidence Confidence     `json:"confidence"`
	Degraded   bool           `json:"degraded,omitempty"`
}

// Consequence is the evaluator's impact analysis for a risky operation.
type Consequence struct {
	Risk              RiskLevel `json:"risk"`
	Explanation       string    `json:"explanation"`
	Details           []string  `json:"details,omitempty"`
	AffectedCount     int       `json:"affected_count"`
	TripName          string    `json:"trip_name,omitempty"`
	BookingPercentage int       `json:"booking_percentage"`
	HasDeployment     bool      `json:"has_deployment"`
	// EvalError carries a lookup failure when the evaluator failed open.
	EvalError string `json:"eval_error,omitempty"`
}

// Outcome captures one logical execution of an operation, including the
// bounded retry accounting.
type Outcome struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Attempts int            `json:"attempts"`
	Duration time.Duration  `json:"duration"`
}

// TurnState is the per-turn working memory that flows through the pipeline
// stages. Each stage fills in its own fields; a stage failure records the
// failing stage and routes directly to the formatter.
type TurnState struct {
	TurnID      string `json:"turn_id"`
	SessionID   string `json:"session_id"`
	Input       string `json:"input"`
	Media       []Media `json:"media,omitempty"`
	PageContext string `json:"page_context,omitempty"`

	Comprehension *Comprehension `json:"comprehension,omitempty"`

	Operation     string         `json:"operation,omitempty"`
	Category      Category       `json:"category,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	ActionPlan    string         `json:"action_plan,omitempty"`
	RequiresCheck bool           `json:"requires_check"`

	Risk                 RiskLevel    `json:"risk,omitempty"`
	Consequence          *Consequence `json:"consequence,omitempty"`
	ConfirmationRequired bool         `json:"confirmation_required"`
	ConfirmationMessage  string       `json:"confirmation_message,omitempty"`
	Decision             Decision     `json:"decision,omitempty"`

	Outcome *Outcome `json:"outcome,omitempty"`

	Response         string           `json:"response,omitempty"`
	ResponseCategory ResponseCategory `json:"response_category,omitempty"`
	UIHint           UIHint           `json:"ui_hint,omitempty"`

	FailedStage Stage  `json:"failed_stage,omitempty"`
	Err         string `json:"error,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// Fail records a stage failure on the turn. The first failure wins; later
// stages must not overwrite where the turn actually broke.
func (t *TurnState) Fail(stage Stage, err error) {
	if t.FailedStage != "" {
		return
	}
	t.FailedStage = stage
	t.Err = err.Error()
}

// Failed reports whether any stage recorded a failure.
func (t *TurnState) Failed() bool {
	return t.FailedStage != ""
}

// SetRisk sets the risk level and the confirmation-required flag together.
// They are never assigned separately, which keeps the two fields from
// contradicting each other.
func (t *TurnState) SetRisk(risk RiskLevel) {
	t.Risk = risk
	t.ConfirmationRequired = risk == RiskHigh
}
