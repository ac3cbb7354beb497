package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
)

// verdict is the shape the classifier demands from the model.
type verdict struct {
	Operation  string         `json:"operation"`
	Params     map[string]any `json:"params"`
	Confidence string         `json:"confidence"`
	Plan       string         `json:"plan"`
}

// classify maps the comprehension record onto the closed operation
// vocabulary. Anything the model returns outside that vocabulary, any
// unparseable output and any low-confidence mapping all collapse to
// OpUnknown, which is never executed. Entity references resolved here
// must exist or the stage fails closed.
func (p *Pipeline) classify(ctx context.Context, st *domain.TurnState) {
	defer p.observeStage(domain.StageClassify, time.Now())

	if strings.TrimSpace(st.Comprehension.Gloss) == "" {
		st.Operation = domain.OpUnknown
		return
	}

	out, err := p.complete(ctx, ports.CompletionRequest{
		System:      classifySystemPrompt,
		User:        p.classifyUserPrompt(st),
		Temperature: 0.1,
		MaxTokens:   1024,
		JSONOutput:  true,
	})
	if err != nil {
		p.logger.Warn("classification completion failed",
			"session_id", st.SessionID, "err", err)
		st.Operation = domain.OpUnknown
		return
	}

	var v verdict
	if err := json.Unmarshal([]byte(stripFences(out)), &v); err != nil {
		// Unparseable model output is a hard failure of this stage;
		// never partially trusted.
		p.logger.Warn("classifier returned unparseable output",
			"session_id", st.SessionID, "err", err)
		st.Operation = domain.OpUnknown
		return
	}

	if v.Operation == "" || v.Operation == domain.OpUnknown || strings.EqualFold(v.Confidence, "low") {
		st.Operation = domain.OpUnknown
		return
	}

	def, ok := p.registry.Lookup(v.Operation)
	if !ok {
		p.logger.Warn("classifier named an unregistered operation",
			"session_id", st.SessionID, "operation", v.Operation)
		st.Operation = domain.OpUnknown
		return
	}

	st.Operation = def.Name
	st.Category = def.Category
	st.RequiresCheck = def.RequiresConsequenceCheck
	st.ActionPlan = v.Plan
	st.Params = v.Params
	if st.Params == nil {
		st.Params = map[string]any{}
	}

	if err := p.resolveReferences(ctx, st); err != nil {
		st.Fail(domain.StageClassify, err)
	}
}

// resolveReferences replaces display-name entity references with IDs. The
// user says "the 8am Whitefield trip"; operations want trip_id. Resolution
// fails closed: a reference that matches nothing fails the stage rather
// than reaching execution.
func (p *Pipeline) resolveReferences(ctx context.Context, st *domain.TurnState) error {
	if name, ok := st.Params["trip_name"].(string); ok && name != "" {
		if _, has := st.Params["trip_id"]; !has {
			trip, err := p.fleet.TripByName(ctx, name)
			if err != nil {
				return fmt.Errorf("resolve trip %q: %w", name, err)
			}
			st.Params["trip_id"] = trip.ID
		}
		delete(st.Params, "trip_name")
	}

	if name, ok := st.Params["route_name"].(string); ok && name != "" {
		if _, has := st.Params["route_id"]; !has {
			route, err := p.fleet.RouteByName(ctx, name)
			if err != nil {
				return fmt.Errorf("resolve route %q: %w", name, err)
			}
			st.Params["route_id"] = route.ID
		}
		delete(st.Params, "route_name")
	}

	return nil
}

// stripFences tolerates models that wrap JSON in markdown fences despite
// the instruction not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
