package agent

import (
	"context"
	"errors"
	"time"

	"github.com/moviops/movi/internal/retry"
	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/operations"
)

// execute dispatches the classified operation through the registry with
// bounded retry. confirmedFingerprint is the fingerprint of the pending
// action the user confirmed, empty for turns that never hit the gate.
//
// The confirmation invariant is re-checked here, not trusted from
// upstream: a high-risk operation runs only with a confirmed decision
// whose fingerprint matches this exact operation and parameter set.
func (p *Pipeline) execute(ctx context.Context, st *domain.TurnState, confirmedFingerprint string) {
	defer p.observeStage(domain.StageExecute, time.Now())

	def, ok := p.registry.Lookup(st.Operation)
	if !ok {
		st.Fail(domain.StageExecute, domain.ErrOperationNotFound)
		return
	}

	if st.Risk == domain.RiskHigh {
		if st.Decision != domain.DecisionConfirmed ||
			confirmedFingerprint != domain.Fingerprint(st.Operation, st.Params) {
			st.Fail(domain.StageExecute, domain.ErrConfirmationRequired)
			return
		}
	}

	cfg := p.retry
	if def.Idempotent {
		// An attempt that ran out its own window is retryable as long
		// as the turn itself is still alive.
		cfg.ShouldRetry = func(err error) bool {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return true
			}
			return domain.IsRetryable(err)
		}
	} else {
		// Creation operations are not safely retryable; one attempt.
		cfg.ShouldRetry = nil
	}

	start := time.Now()
	var res operations.Result
	attempts, err := retry.Do(ctx, cfg, p.logger, func() error {
		actx, cancel := context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
		res = p.registry.Execute(actx, st.Operation, st.Params)
		return res.Err()
	})

	st.Outcome = &domain.Outcome{
		Success:  err == nil,
		Message:  res.Message(),
		Data:     res.Data(),
		Attempts: attempts,
		Duration: time.Since(start),
	}
	if err != nil {
		st.Outcome.Error = err.Error()
	}

	p.metrics.ObserveOperation(st.Operation, attempts, err == nil)
	p.logger.Info("operation executed",
		"session_id", st.SessionID,
		"operation", st.Operation,
		"success", err == nil,
		"attempts", attempts,
		"duration", st.Outcome.Duration,
	)
}
