package grammar

import (
	"slices"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/edwingeng/deque"
)

// Report summarises which parts of a table a root sequence can reach.
type Report struct {
	Reachable []domain.Symbol // Registered non-terminals reachable from the root
	Unused    []domain.Symbol // Registered non-terminals never reached
	Terminals []domain.Symbol // Distinct terminals that can be emitted
	Empty     []domain.Symbol // Reachable non-terminals whose box is empty
}

// Reachable scans the table breadth-first starting from the symbols of root.
// Unlike a cursor, it visits every rule once, so it terminates for cyclic tables too.
func Reachable(t *Table, root string) Report {
	visited := make(map[domain.Symbol]bool)
	terminals := make(map[domain.Symbol]bool)

	queue := deque.NewDeque()
	enqueue := func(sym domain.Symbol) {
		switch t.Classify(sym) {
		case domain.ClassTerminal:
			terminals[sym] = true
		case domain.ClassNonTerminal:
			if !visited[sym] {
				visited[sym] = true
				queue.PushBack(sym)
			}
		}
	}

	for _, sym := range domain.Symbols(root) {
		enqueue(sym)
	}

	var report Report
	for !queue.Empty() {
		name := queue.Front().(domain.Symbol)
		queue.PopFront()
		box := t.Box(name)
		if len(box) == 0 {
			report.Empty = append(report.Empty, name)
		}
		for _, sym := range box {
			enqueue(sym)
		}
	}

	for _, name := range t.Names() {
		if visited[name] {
			report.Reachable = append(report.Reachable, name)
		} else {
			report.Unused = append(report.Unused, name)
		}
	}
	for sym := range terminals {
		report.Terminals = append(report.Terminals, sym)
	}
	slices.Sort(report.Terminals)
	slices.Sort(report.Empty)
	return report
}
