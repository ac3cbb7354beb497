// Package graph renders the fleet network as Mermaid flowchart syntax,
// for pasting into docs or a Mermaid live editor.
package graph

import (
	"fmt"
	"strings"

	"github.com/moviops/movi/pkg/domain"
)

// PathView is one service path with its ordered stops and routes.
type PathView struct {
	Path   domain.Path
	Stops  []domain.Stop
	Routes []domain.Route
}

// GenerateMermaid produces a Mermaid flowchart from the fleet network.
// Each path becomes a subgraph of its ordered stops; routes attach to
// their path with dotted edges. Inactive routes are styled down.
func GenerateMermaid(paths []PathView) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var inactive []string
	for i, pv := range paths {
		pathID := fmt.Sprintf("p%d", i)

		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", pathID, escapeLabel(pv.Path.Name)))
		for j, stop := range pv.Stops {
			sb.WriteString(fmt.Sprintf("        %s_s%d[\"%s\"]\n", pathID, j, escapeLabel(stop.Name)))
		}
		for j := 1; j < len(pv.Stops); j++ {
			sb.WriteString(fmt.Sprintf("        %s_s%d --> %s_s%d\n", pathID, j-1, pathID, j))
		}
		sb.WriteString("    end\n")

		for j, route := range pv.Routes {
			routeID := fmt.Sprintf("%s_r%d", pathID, j)
			label := fmt.Sprintf("%s %s", route.ShiftTime, route.Direction)
			sb.WriteString(fmt.Sprintf("    %s([\"%s\"]) -.-> %s\n", routeID, escapeLabel(label), pathID))
			if !route.Active {
				inactive = append(inactive, routeID)
			}
		}
	}

	if len(inactive) > 0 {
		sb.WriteString("\n    classDef inactive fill:#eee,stroke:#999,color:#666;\n")
		for _, id := range inactive {
			sb.WriteString(fmt.Sprintf("    class %s inactive;\n", id))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
