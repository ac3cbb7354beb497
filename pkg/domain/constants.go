package domain

// Modality tags the dominant input channel of a turn.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
	ModalityImage Modality = "image"
	ModalityVideo Modality = "video"
)

// Category classifies an operation by its effect on the fleet store.
type Category string

const (
	CategoryRead   Category = "read"
	CategoryWrite  Category = "write"
	CategoryDelete Category = "delete"
)

// RiskLevel is the outcome of a consequence evaluation.
type RiskLevel string

const (
	RiskNone RiskLevel = "none"
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

// Confidence grades how sure the comprehension stage is about its reading.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Decision records the user's answer to a pending confirmation.
type Decision string

const (
	DecisionPending   Decision = "pending"
	DecisionConfirmed Decision = "confirmed"
	DecisionDeclined  Decision = "declined"
)

// ResponseCategory labels the user-facing response of a completed turn.
type ResponseCategory string

const (
	ResponseSuccess             ResponseCategory = "success"
	ResponseError               ResponseCategory = "error"
	ResponseInfo                ResponseCategory = "info"
	ResponseWarning             ResponseCategory = "warning"
	ResponseConfirmationPending ResponseCategory = "confirmation-pending"
)

// UIHint tells the caller what to do with the response besides showing it.
type UIHint string

const (
	UIHintPlainText        UIHint = "plain-text"
	UIHintRefreshData      UIHint = "refresh-data"
	UIHintShowConfirmation UIHint = "show-confirmation"
)

// SessionStatus is the persisted state machine position of a session.
// Transitions: idle -> awaiting_confirmation (high risk),
// idle -> executing (none/low risk), awaiting_confirmation -> executing
// (confirmed), awaiting_confirmation -> completed (declined),
// executing -> completed | failed.
type SessionStatus string

const (
	StatusIdle                 SessionStatus = "idle"
	StatusAwaitingConfirmation SessionStatus = "awaiting_confirmation"
	StatusExecuting            SessionStatus = "executing"
	StatusCompleted            SessionStatus = "completed"
	StatusFailed               SessionStatus = "failed"
)

// Stage identifies a pipeline stage, used to mark where a turn failed.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageClassify  Stage = "classify"
	StageEvaluate  Stage = "evaluate"
	StageConfirm   Stage = "confirm"
	StageExecute   Stage = "execute"
	StageFormat    Stage = "format"
)

// OpUnknown is the classifier's verdict when no operation in the closed
// vocabulary matches the utterance. It is never dispatched.
const OpUnknown = "unknown"
