package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/moviops/movi/internal/logging"
	"github.com/moviops/movi/internal/metrics"
	"github.com/moviops/movi/internal/retry"
	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/operations"
	"github.com/moviops/movi/pkg/ports"
	"github.com/moviops/movi/pkg/session"
)

// Request is one inbound turn.
type Request struct {
	// SessionID identifies the conversation; empty starts a new session.
	SessionID   string
	Owner       string
	Text        string
	Media       []domain.Media
	PageContext string
	// Decision is an optional explicit confirm/decline signal
	// ("confirm" or "decline") for a pending action. When empty, a
	// session awaiting confirmation interprets the text instead.
	Decision string
}

// Response is what the caller shows the user.
type Response struct {
	SessionID           string                  `json:"session_id"`
	TurnID              string                  `json:"turn_id"`
	Text                string                  `json:"text"`
	Category            domain.ResponseCategory `json:"category"`
	UIHint              domain.UIHint           `json:"ui_hint"`
	Metadata            map[string]any          `json:"metadata,omitempty"`
	ConfirmationPending bool                    `json:"confirmation_pending"`
}

// Pipeline runs turns through normalize, classify, evaluate, confirm,
// execute and format. One Pipeline serves all sessions; per-session
// ordering comes from the session manager's locks.
type Pipeline struct {
	sessions     *session.Manager
	registry     *operations.Registry
	fleet        ports.FleetReader
	completer    ports.Completer
	comprehender ports.Comprehender

	retry       retry.Config
	callTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// DefaultCallTimeout bounds every external call a turn makes. A stalled
// backend costs one call, never the turn or the session lock around it.
const DefaultCallTimeout = 30 * time.Second

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics enables instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithRetry overrides the executor retry bounds.
func WithRetry(cfg retry.Config) Option {
	return func(p *Pipeline) { p.retry = cfg }
}

// WithComprehender enables multimodal input. Without one, turns are
// normalized from their text alone.
func WithComprehender(c ports.Comprehender) Option {
	return func(p *Pipeline) { p.comprehender = c }
}

// WithCallTimeout overrides the per-call deadline for external calls.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

// New builds a pipeline over the given collaborators.
func New(sessions *session.Manager, registry *operations.Registry, fleet ports.FleetReader, completer ports.Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		sessions:    sessions,
		registry:    registry,
		fleet:       fleet,
		completer:   completer,
		retry:       retry.DefaultConfig,
		callTimeout: DefaultCallTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// complete calls the completion capability under the per-call deadline.
// Stages treat the resulting deadline error like any other completion
// failure: terminal for the call, degraded output for the stage.
func (p *Pipeline) complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.completer.Complete(ctx, req)
}

// comprehend calls the comprehension capability under the same deadline.
func (p *Pipeline) comprehend(ctx context.Context, input ports.ComprehensionInput) (*domain.Comprehension, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.comprehender.Comprehend(ctx, input)
}

// Turn processes one inbound turn and returns the user-facing response.
// Turns for the same session are strictly serialized; if ctx is cancelled
// before the turn is committed, nothing is persisted.
func (p *Pipeline) Turn(ctx context.Context, req Request) (*Response, error) {
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	var resp *Response
	err := p.sessions.WithLock(ctx, req.SessionID, func(ctx context.Context) error {
		// The manager's lock is already held, so talk to the store
		// directly instead of through the locking wrappers.
		store := p.sessions.Store()

		sess, err := store.Load(ctx, req.SessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			sess = domain.NewSession(req.SessionID, req.Owner, req.PageContext)
		} else if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if !sess.Active {
			return domain.ErrSessionInactive
		}
		if req.PageContext != "" {
			sess.PageContext = req.PageContext
		}

		st := &domain.TurnState{
			TurnID:      uuid.NewString(),
			SessionID:   sess.ID,
			Input:       req.Text,
			Media:       req.Media,
			PageContext: sess.PageContext,
			StartedAt:   time.Now().UTC(),
		}

		log := p.logger.With("session_id", sess.ID, "turn_id", st.TurnID)
		log.Info("turn started", "status", sess.Status)

		var implicitDecline *domain.PendingAction
		if sess.Status == domain.StatusAwaitingConfirmation && sess.Pending != nil {
			implicitDecline = p.resume(ctx, sess, st, req, log)
		} else {
			p.run(ctx, sess, st)
		}

		p.format(ctx, st)
		if implicitDecline != nil {
			st.Response = fmt.Sprintf("Okay, I won't go ahead with %s.\n\n%s",
				describeOperation(implicitDecline.Operation), st.Response)
		}
		st.CompletedAt = time.Now().UTC()

		p.settle(sess, st)

		// Abort without persisting: a cancelled request leaves no
		// half-written turn behind.
		if err := ctx.Err(); err != nil {
			return err
		}

		sess.AppendTurn(st)
		if err := store.Save(ctx, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		p.metrics.ObserveTurn(string(st.ResponseCategory))
		log.Info("turn completed",
			"operation", st.Operation,
			"category", st.ResponseCategory,
			"status", sess.Status,
		)

		resp = p.respond(sess, st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// run is the fresh-turn path: the full stage sequence with the gate
// short-circuit for high risk.
func (p *Pipeline) run(ctx context.Context, sess *domain.Session, st *domain.TurnState) {
	p.normalize(ctx, st)
	if st.Failed() {
		return
	}

	p.classify(ctx, st)
	if st.Failed() || st.Operation == domain.OpUnknown {
		return
	}

	if st.RequiresCheck {
		p.evaluate(ctx, st)
		if st.Failed() {
			return
		}
	} else {
		st.SetRisk(domain.RiskNone)
	}

	if st.ConfirmationRequired {
		p.suspend(ctx, sess, st)
		return
	}

	sess.Status = domain.StatusExecuting
	p.execute(ctx, st, "")
}

// resume handles a turn arriving at a suspended session. Confirmed
// decisions re-enter at the executor, declines go straight to the
// formatter, and anything else is an implicit decline followed by a fresh
// classification of the new utterance (returned so the caller can prefix
// the response with the cancellation).
func (p *Pipeline) resume(ctx context.Context, sess *domain.Session, st *domain.TurnState, req Request, log *slog.Logger) *domain.PendingAction {
	pending := sess.Pending
	decision := parseDecision(req.Decision, req.Text)

	switch decision {
	case domain.DecisionConfirmed:
		log.Info("pending action confirmed", "operation", pending.Operation)
		st.Operation = pending.Operation
		st.Params = pending.Params
		st.Consequence = pending.Consequence
		st.ConfirmationMessage = pending.Message
		st.Decision = domain.DecisionConfirmed
		if def, ok := p.registry.Lookup(pending.Operation); ok {
			st.Category = def.Category
			st.RequiresCheck = def.RequiresConsequenceCheck
		}
		st.SetRisk(pending.Risk)

		sess.Resolve(domain.StatusExecuting)
		p.execute(ctx, st, pending.Fingerprint)
		return nil

	case domain.DecisionDeclined:
		log.Info("pending action declined", "operation", pending.Operation)
		st.Operation = pending.Operation
		st.Consequence = pending.Consequence
		st.Decision = domain.DecisionDeclined
		sess.Resolve(domain.StatusCompleted)
		return nil

	default:
		// Neither yes nor no: decline the pending action, then treat
		// the utterance as a new intent in the same turn.
		log.Info("ambiguous reply to pending action, declining and reclassifying",
			"operation", pending.Operation)
		sess.Resolve(domain.StatusIdle)
		p.run(ctx, sess, st)
		return pending
	}
}

// settle moves the session to its final status for this turn. A turn that
// suspended at the gate already set awaiting_confirmation and is left
// alone.
func (p *Pipeline) settle(sess *domain.Session, st *domain.TurnState) {
	if sess.Status == domain.StatusAwaitingConfirmation {
		return
	}
	switch {
	case st.Failed():
		sess.Status = domain.StatusFailed
		sess.LastError = st.Err
	case st.Outcome != nil && !st.Outcome.Success:
		sess.Status = domain.StatusFailed
		sess.LastError = st.Outcome.Error
	default:
		sess.Status = domain.StatusCompleted
		sess.LastError = ""
	}
}

// respond projects the finished turn into the caller-facing shape.
func (p *Pipeline) respond(sess *domain.Session, st *domain.TurnState) *Response {
	meta := map[string]any{}
	if st.Operation != "" {
		meta["operation"] = st.Operation
	}
	if st.Category != "" {
		meta["category"] = string(st.Category)
	}
	if st.Risk != "" {
		meta["risk"] = string(st.Risk)
	}
	if st.Consequence != nil {
		meta["affected_count"] = st.Consequence.AffectedCount
		if st.Consequence.EvalError != "" {
			meta["eval_error"] = st.Consequence.EvalError
		}
	}
	if st.Outcome != nil {
		meta["attempts"] = st.Outcome.Attempts
		if len(st.Outcome.Data) > 0 {
			meta["data"] = st.Outcome.Data
		}
	}
	if st.FailedStage != "" {
		meta["failed_stage"] = string(st.FailedStage)
	}

	return &Response{
		SessionID:           sess.ID,
		TurnID:              st.TurnID,
		Text:                st.Response,
		Category:            st.ResponseCategory,
		UIHint:              st.UIHint,
		Metadata:            meta,
		ConfirmationPending: st.ResponseCategory == domain.ResponseConfirmationPending,
	}
}

// observeStage is a helper for stage duration metrics.
func (p *Pipeline) observeStage(stage domain.Stage, start time.Time) {
	p.metrics.ObserveStage(string(stage), time.Since(start))
}
