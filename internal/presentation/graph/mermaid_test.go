package graph_test

import (
	"strings"
	"testing"

	"github.com/moviops/movi/internal/presentation/graph"
	"github.com/moviops/movi/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		paths    []graph.PathView
		contains []string
	}{
		{
			name: "Ordered Stops",
			paths: []graph.PathView{
				{
					Path: domain.Path{ID: 1, Name: "Whitefield Express"},
					Stops: []domain.Stop{
						{ID: 1, Name: "Central"},
						{ID: 2, Name: "Tech Park"},
						{ID: 3, Name: "Whitefield"},
					},
				},
			},
			contains: []string{
				"subgraph p0[\"Whitefield Express\"]",
				"p0_s0[\"Central\"]",
				"p0_s0 --> p0_s1",
				"p0_s1 --> p0_s2",
			},
		},
		{
			name: "Routes Attach To Path",
			paths: []graph.PathView{
				{
					Path:  domain.Path{ID: 1, Name: "E-City Direct"},
					Stops: []domain.Stop{{ID: 1, Name: "Silk Board"}},
					Routes: []domain.Route{
						{ID: 10, ShiftTime: "08:00", Direction: "UP", Active: true},
						{ID: 11, ShiftTime: "19:00", Direction: "DOWN", Active: false},
					},
				},
			},
			contains: []string{
				"p0_r0([\"08:00 UP\"]) -.-> p0",
				"p0_r1([\"19:00 DOWN\"]) -.-> p0",
				"classDef inactive",
				"class p0_r1 inactive;",
			},
		},
		{
			name: "Quotes Escaped In Labels",
			paths: []graph.PathView{
				{
					Path:  domain.Path{ID: 1, Name: `The "Loop"`},
					Stops: []domain.Stop{{ID: 1, Name: "Depot"}},
				},
			},
			contains: []string{
				"subgraph p0[\"The 'Loop'\"]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.paths)
			if !strings.HasPrefix(out, "graph TD\n") {
				t.Errorf("Expected flowchart header, got: %q", out[:20])
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q.\nGot:\n%s", want, out)
				}
			}
		})
	}
}

func TestGenerateMermaidNoInactiveClassWhenAllActive(t *testing.T) {
	out := graph.GenerateMermaid([]graph.PathView{
		{
			Path:   domain.Path{ID: 1, Name: "Loop"},
			Stops:  []domain.Stop{{ID: 1, Name: "A"}},
			Routes: []domain.Route{{ID: 1, ShiftTime: "08:00", Direction: "UP", Active: true}},
		},
	})
	if strings.Contains(out, "classDef inactive") {
		t.Error("Expected no inactive styling when all routes are active")
	}
}
