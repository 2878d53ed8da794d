package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/links"
)

// GenerateMermaid produces a Mermaid flowchart of a story's passages and links.
// It applies semantic styling:
// - Start passage: ((Circle))
// - Tagged passage: [/Parallelogram/]
// - Default: [Rectangle]
// Broken links are dotted and end at a ghost node named after the missing target.
// Highlighted passages get the highlighted class.
func GenerateMermaid(s *domain.Story) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, p := range s.Passages {
		opener, closer := "[", "]"
		switch {
		case p.ID == s.StartPassage:
			opener, closer = "((", "))"
		case len(p.Tags) > 0:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(p.ID), opener, label(p.Name), closer)
	}

	ghosts := make(map[string]string)
	var ghostOrder []string
	for _, l := range links.Build(s).Links {
		from := sanitizeMermaidID(l.From.ID)
		if l.Kind != links.KindBroken {
			fmt.Fprintf(&sb, "    %s --> %s\n", from, sanitizeMermaidID(l.To.ID))
			continue
		}
		ghost, ok := ghosts[l.Target]
		if !ok {
			ghost = fmt.Sprintf("missing_%d", len(ghosts)+1)
			ghosts[l.Target] = ghost
			ghostOrder = append(ghostOrder, l.Target)
		}
		fmt.Fprintf(&sb, "    %s -.-> %s\n", from, ghost)
	}
	for _, target := range ghostOrder {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", ghosts[target], label(target))
	}

	var highlighted []string
	for _, p := range s.Passages {
		if p.Highlighted {
			highlighted = append(highlighted, sanitizeMermaidID(p.ID))
		}
	}
	if len(ghostOrder) == 0 && len(highlighted) == 0 {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef broken fill:#ffebee,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
	sb.WriteString("    classDef highlighted fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	for _, target := range ghostOrder {
		fmt.Fprintf(&sb, "    class %s broken;\n", ghosts[target])
	}
	for _, id := range highlighted {
		fmt.Fprintf(&sb, "    class %s highlighted;\n", id)
	}
	return sb.String()
}

func label(name string) string {
	return strings.ReplaceAll(name, "\"", "#quot;")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return "p_" + s
}
