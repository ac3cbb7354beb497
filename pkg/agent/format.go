package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
)

// format is the only stage that produces user-visible text. It maps the
// final turn state onto {text, category, UI hint}, never fabricating data
// that execution did not return, and falls back to category templates
// when phrasing is unavailable.
func (p *Pipeline) format(ctx context.Context, st *domain.TurnState) {
	defer p.observeStage(domain.StageFormat, time.Now())

	switch {
	case st.Failed():
		st.ResponseCategory = domain.ResponseError
		st.UIHint = domain.UIHintPlainText
		st.Response = failureText(st)

	case st.ConfirmationRequired && st.Decision == domain.DecisionPending:
		st.ResponseCategory = domain.ResponseConfirmationPending
		st.UIHint = domain.UIHintShowConfirmation
		st.Response = st.ConfirmationMessage

	case st.Decision == domain.DecisionDeclined && st.Outcome == nil:
		st.ResponseCategory = domain.ResponseInfo
		st.UIHint = domain.UIHintPlainText
		st.Response = fmt.Sprintf("Okay, I've cancelled that. Nothing was changed; %s was not performed.",
			describeOperation(st.Operation))

	case st.Operation == domain.OpUnknown || st.Operation == "":
		st.ResponseCategory = domain.ResponseInfo
		st.UIHint = domain.UIHintPlainText
		st.Response = clarificationText(st)

	case st.Outcome != nil && st.Outcome.Success:
		st.ResponseCategory = domain.ResponseSuccess
		st.UIHint = domain.UIHintPlainText
		if st.Category == domain.CategoryWrite || st.Category == domain.CategoryDelete {
			st.UIHint = domain.UIHintRefreshData
		}
		st.Response = p.successText(ctx, st)

	case st.Outcome != nil:
		st.ResponseCategory = domain.ResponseError
		st.UIHint = domain.UIHintPlainText
		st.Response = executionFailureText(st)

	default:
		st.ResponseCategory = domain.ResponseInfo
		st.UIHint = domain.UIHintPlainText
		st.Response = "I couldn't complete that request. Could you rephrase it?"
	}
}

// successText asks the model to phrase the outcome conversationally and
// falls back to the operation's own message.
func (p *Pipeline) successText(ctx context.Context, st *domain.TurnState) string {
	fallback := st.Outcome.Message
	if fallback == "" {
		fallback = "Done."
	}

	out, err := p.complete(ctx, ports.CompletionRequest{
		System:      respondSystemPrompt,
		User:        p.respondUserPrompt(st),
		Temperature: 0.5,
		MaxTokens:   512,
	})
	if err != nil || strings.TrimSpace(out) == "" {
		return fallback
	}
	return strings.TrimSpace(out)
}

// clarificationText covers unknown intents and degraded comprehension.
func clarificationText(st *domain.TurnState) string {
	if st.Comprehension != nil && st.Comprehension.Degraded {
		return "I had trouble understanding that input. Could you repeat it, or type what you'd like to do?"
	}
	return "I'm not sure what you'd like me to do. I can check trip status, list stops and routes, " +
		"count unassigned vehicles, assign or remove vehicles, and create stops, paths and routes."
}

// failureText maps a stage failure to user-facing text.
func failureText(st *domain.TurnState) string {
	switch st.FailedStage {
	case domain.StageClassify:
		return fmt.Sprintf("I couldn't find what you referred to: %s. Could you check the name or ID?", st.Err)
	case domain.StageExecute:
		if strings.Contains(st.Err, domain.ErrConfirmationRequired.Error()) {
			return "That action needs your confirmation first, and none was recorded. Nothing was changed."
		}
		return fmt.Sprintf("I couldn't perform that action: %s", st.Err)
	default:
		return fmt.Sprintf("Something went wrong while handling that request: %s", st.Err)
	}
}

// executionFailureText reports a completed-but-failed execution with its
// attempt accounting.
func executionFailureText(st *domain.TurnState) string {
	msg := st.Outcome.Message
	if msg == "" {
		msg = st.Outcome.Error
	}
	if st.Outcome.Attempts > 1 {
		return fmt.Sprintf("%s (gave up after %d attempts)", msg, st.Outcome.Attempts)
	}
	return msg
}
