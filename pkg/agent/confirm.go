package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
)

// suspend parks the turn at the confirmation gate: it produces the warning
// text, records the pending action with its parameter fingerprint, and
// moves the session to awaiting_confirmation. Execution happens, if ever,
// in a later turn.
func (p *Pipeline) suspend(ctx context.Context, sess *domain.Session, st *domain.TurnState) {
	defer p.observeStage(domain.StageConfirm, time.Now())

	st.ConfirmationMessage = p.confirmationText(ctx, st)
	st.Decision = domain.DecisionPending

	sess.Suspend(&domain.PendingAction{
		Operation:   st.Operation,
		Params:      st.Params,
		Fingerprint: domain.Fingerprint(st.Operation, st.Params),
		Risk:        st.Risk,
		Consequence: st.Consequence,
		Message:     st.ConfirmationMessage,
		IssuedAt:    time.Now().UTC(),
	})
}

// confirmationText asks the model for a natural-language warning and falls
// back to a deterministic template when the completion fails.
func (p *Pipeline) confirmationText(ctx context.Context, st *domain.TurnState) string {
	out, err := p.complete(ctx, ports.CompletionRequest{
		System:      confirmSystemPrompt,
		User:        p.confirmUserPrompt(st),
		Temperature: 0.4,
		MaxTokens:   512,
	})
	if err != nil || strings.TrimSpace(out) == "" {
		p.logger.Warn("confirmation text generation failed, using template",
			"session_id", st.SessionID, "err", err)
		return fallbackConfirmation(st)
	}
	return strings.TrimSpace(out)
}

// fallbackConfirmation is the template used when the completer is
// unavailable. It must carry the affected count and the consequence
// bullets on its own.
func fallbackConfirmation(st *domain.TurnState) string {
	var b strings.Builder
	cons := st.Consequence

	fmt.Fprintf(&b, "Warning: this will %s", describeOperation(st.Operation))
	if cons != nil && cons.TripName != "" {
		fmt.Fprintf(&b, " for trip %q", cons.TripName)
	}
	b.WriteString(".\n")
	if cons != nil {
		fmt.Fprintf(&b, "%s\n", cons.Explanation)
		for _, d := range cons.Details {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	b.WriteString("\nDo you want to proceed? (yes/no)")
	return b.String()
}

// describeOperation renders an operation name as a verb phrase for
// user-facing text.
func describeOperation(op string) string {
	return strings.ReplaceAll(op, "_", " ")
}

// confirmWords and declineWords are the lexicon for interpreting a reply
// to a pending confirmation. Anything outside both sets is ambiguous.
var confirmWords = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "yup": true,
	"confirm": true, "confirmed": true, "ok": true, "okay": true,
	"sure": true, "proceed": true, "go ahead": true, "do it": true,
	"haan": true,
}

var declineWords = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true,
	"cancel": true, "decline": true, "declined": true, "stop": true,
	"abort": true, "don't": true, "dont": true, "nahi": true,
}

// parseDecision interprets an explicit decision signal or, failing that,
// the message text. DecisionPending means the reply was neither a yes nor
// a no and the turn carries a new intent instead.
func parseDecision(signal, text string) domain.Decision {
	switch strings.ToLower(strings.TrimSpace(signal)) {
	case "confirm", "confirmed", "yes":
		return domain.DecisionConfirmed
	case "decline", "declined", "cancel", "no":
		return domain.DecisionDeclined
	}

	norm := strings.ToLower(strings.TrimSpace(text))
	norm = strings.Trim(norm, ".!, ")
	if confirmWords[norm] {
		return domain.DecisionConfirmed
	}
	if declineWords[norm] {
		return domain.DecisionDeclined
	}
	return domain.DecisionPending
}
