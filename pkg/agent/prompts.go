package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/moviops/movi/pkg/domain"
)

const classifySystemPrompt = `You are the intent classifier for a transit operations assistant.
Map the user's request onto exactly one operation from the provided list, or "unknown" if none fits.

Respond with a single JSON object and nothing else, no markdown fences:
{"operation": "<name or unknown>", "params": {...}, "confidence": "high|medium|low", "plan": "<one sentence>"}

Rules:
- Only use operation names from the list. Never invent one.
- Fill params using the declared fields. If the user names a trip rather than giving an ID, put it in "trip_name".
- If required information is missing or the request is unrelated to transit operations, return "unknown".
- If you are unsure, set confidence to "low".`

const confirmSystemPrompt = `You write short confirmation warnings for a transit operations assistant.
The user asked for an action that affects passengers with existing bookings.
Write a concise warning (3-5 lines) that states what will happen, how many passengers are affected,
and ends by asking the user to confirm with yes or no. Plain text only, no markdown.`

const respondSystemPrompt = `You phrase operation results for a transit operations assistant.
Given the result of a completed operation, reply to the user in one or two friendly sentences.
Only state facts present in the result data. Plain text only.`

// classifyUserPrompt renders the vocabulary and the turn for the model.
func (p *Pipeline) classifyUserPrompt(st *domain.TurnState) string {
	var b strings.Builder

	b.WriteString("Available operations:\n")
	for _, def := range p.registry.Definitions() {
		fmt.Fprintf(&b, "- %s (%s): %s\n", def.Name, def.Category, def.Description)
		fields := make([]string, 0, len(def.Schema))
		for name, typ := range def.Schema {
			fields = append(fields, fmt.Sprintf("%s:%s", name, typ.Name()))
		}
		sort.Strings(fields)
		if len(fields) > 0 {
			fmt.Fprintf(&b, "  params: %s\n", strings.Join(fields, ", "))
		}
	}

	if st.PageContext != "" {
		fmt.Fprintf(&b, "\nThe user is currently looking at: %s\n", st.PageContext)
	}

	c := st.Comprehension
	fmt.Fprintf(&b, "\nUser request (%s): %s\n", c.Modality, c.Gloss)
	if len(c.Entities) > 0 {
		if raw, err := json.Marshal(c.Entities); err == nil {
			fmt.Fprintf(&b, "Entities mentioned: %s\n", raw)
		}
	}
	if c.ActionHint != "" {
		fmt.Fprintf(&b, "Action hint: %s\n", c.ActionHint)
	}
	if c.Degraded {
		b.WriteString("Note: input comprehension was degraded; prefer \"unknown\" unless the request is clear.\n")
	}

	return b.String()
}

// confirmUserPrompt feeds the consequence record to the warning writer.
func (p *Pipeline) confirmUserPrompt(st *domain.TurnState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action: %s\n", describeOperation(st.Operation))
	if cons := st.Consequence; cons != nil {
		fmt.Fprintf(&b, "Trip: %s\n", cons.TripName)
		fmt.Fprintf(&b, "Booking level: %d%%\n", cons.BookingPercentage)
		fmt.Fprintf(&b, "Passengers affected: %d\n", cons.AffectedCount)
		for _, d := range cons.Details {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	return b.String()
}

// respondUserPrompt feeds the outcome to the response phraser.
func (p *Pipeline) respondUserPrompt(st *domain.TurnState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user asked: %s\n", st.Input)
	fmt.Fprintf(&b, "Operation performed: %s\n", describeOperation(st.Operation))
	fmt.Fprintf(&b, "Result: %s\n", st.Outcome.Message)
	if len(st.Outcome.Data) > 0 {
		if raw, err := json.Marshal(st.Outcome.Data); err == nil {
			fmt.Fprintf(&b, "Result data: %s\n", raw)
		}
	}
	return b.String()
}
