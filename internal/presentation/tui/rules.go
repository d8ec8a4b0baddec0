package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/beatbox/pkg/grammar"
)

// maxCell keeps very long replacements readable in a table cell.
const maxCell = 48

// RulesMarkdown describes a rule table as markdown, for rendering with NewRenderer.
// When report is non-nil, rules unreachable from its root are flagged.
func RulesMarkdown(table *grammar.Table, report *grammar.Report) string {
	var sb strings.Builder

	sb.WriteString("# Rule table\n\n")
	fmt.Fprintf(&sb, "- **Policy:** `%s`\n", table.Policy())
	fmt.Fprintf(&sb, "- **Rules:** %d\n", table.Len())
	fmt.Fprintf(&sb, "- **Fingerprint:** `%.16s`\n", table.Fingerprint())
	if table.Lenient() {
		sb.WriteString("- **Undefined rules:** expand to nothing\n")
	}
	sb.WriteString("\n| Rule | Length | Replacement |\n|---|---:|---|\n")

	unused := map[string]bool{}
	if report != nil {
		for _, name := range report.Unused {
			unused[name.String()] = true
		}
	}

	rules := table.Rules()
	for _, name := range table.Names() {
		box := rules[name.String()]
		label := "`" + name.String() + "`"
		if unused[name.String()] {
			label += " _(unused)_"
		}
		fmt.Fprintf(&sb, "| %s | %d | %s |\n", label, len(box), cell(box))
	}
	return sb.String()
}

func cell(box string) string {
	if box == "" {
		return "_empty_"
	}
	if len(box) > maxCell {
		box = box[:maxCell] + "…"
	}
	return "`" + strings.ReplaceAll(box, "|", "\\|") + "`"
}
