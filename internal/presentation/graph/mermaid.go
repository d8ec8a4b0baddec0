package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
)

// Overlay marks the part of the table a particular root sequence uses.
type Overlay struct {
	Root   string
	Report grammar.Report
}

// GenerateMermaid produces a Mermaid flowchart of rule references.
// Every rule is a node; an edge A --> B means B appears in A's replacement, labelled
// with the number of occurrences when it is more than one.
// Shapes:
//   - Rule with only terminals: [[Subroutine]]
//   - Empty rule: [/Parallelogram/]
//   - Default: [Rectangle]
func GenerateMermaid(table *grammar.Table, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, name := range table.Names() {
		box := table.Box(name)
		refs, order := references(table, box)

		opener, closer := "[", "]"
		switch {
		case len(box) == 0:
			opener, closer = "[/", "/]"
		case len(order) == 0:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %d\"%s\n", nodeID(name), opener, name, len(box), closer)

		for _, ref := range order {
			arrow := "-->"
			if n := refs[ref]; n > 1 {
				arrow = fmt.Sprintf("-- \"×%d\" -->", n)
			}
			if !table.Has(ref) {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(name), arrow, nodeID(ref))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef root fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef reachable fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef unused fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#616161;\n")

		roots := map[domain.Symbol]bool{}
		for _, sym := range domain.Symbols(overlay.Root) {
			if table.Has(sym) && !roots[sym] {
				roots[sym] = true
				fmt.Fprintf(&sb, "    class %s root;\n", nodeID(sym))
			}
		}
		for _, sym := range overlay.Report.Reachable {
			if !roots[sym] {
				fmt.Fprintf(&sb, "    class %s reachable;\n", nodeID(sym))
			}
		}
		for _, sym := range overlay.Report.Unused {
			fmt.Fprintf(&sb, "    class %s unused;\n", nodeID(sym))
		}
	}

	return sb.String()
}

// references counts non-terminal occurrences in box, keeping first-seen order.
func references(table *grammar.Table, box []domain.Symbol) (map[domain.Symbol]int, []domain.Symbol) {
	refs := map[domain.Symbol]int{}
	var order []domain.Symbol
	for _, sym := range box {
		if !table.IsNonTerminal(sym) {
			continue
		}
		if refs[sym] == 0 {
			order = append(order, sym)
		}
		refs[sym]++
	}
	return refs, order
}

// nodeID keeps Mermaid identifiers alphanumeric; rule names are single characters.
func nodeID(sym domain.Symbol) string {
	return fmt.Sprintf("r%d", sym)
}
