package middleware

import (
	"context"
	"regexp"
	"time"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks operation parameters
// whose keys match the patterns before the session is persisted. The
// in-memory session the pipeline works with is left untouched.
//
// Masking covers the turn history and the current snapshot, never the
// pending action: its parameters must round-trip verbatim or the stored
// fingerprint no longer matches and every confirm is rejected. Use the
// encryption middleware to protect pending actions at rest.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, session *domain.Session) error {
	// Clone before masking to avoid side effects on the session the
	// pipeline is still holding.
	cloned := *session

	if session.Current != nil {
		cur := *session.Current
		cur.Params = deepCopyMap(session.Current.Params)
		maskMap(cur.Params, m.patterns)
		cloned.Current = &cur
	}
	if len(session.Turns) > 0 {
		turns := make([]domain.Turn, len(session.Turns))
		copy(turns, session.Turns)
		for i := range turns {
			if turns[i].State == nil {
				continue
			}
			st := *turns[i].State
			st.Params = deepCopyMap(turns[i].State.Params)
			maskMap(st.Params, m.patterns)
			turns[i].State = &st
		}
		cloned.Turns = turns
	}

	return m.next.Save(ctx, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	return m.next.PurgeExpired(ctx, cutoff)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
