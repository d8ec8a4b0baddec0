package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventDescend EventType = "descend"
	EventAscend  EventType = "ascend"
	EventEmit    EventType = "emit"
	EventDone    EventType = "done"
)

// Event describes a single cursor transition.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Symbol    Symbol    `json:"symbol,omitempty"` // Entered non-terminal or emitted terminal
	Depth     int       `json:"depth"`            // Stack length after the transition
	Emitted   int       `json:"emitted"`          // Terminals emitted so far
}

// LifecycleHooks defines callbacks for cursor observability.
// All hooks are optional; they run synchronously inside Advance.
type LifecycleHooks struct {
	OnDescend func(*Event)
	OnAscend  func(*Event)
	OnEmit    func(*Event)
	OnDone    func(*Event)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDescend: chain(h.OnDescend, other.OnDescend),
		OnAscend:  chain(h.OnAscend, other.OnAscend),
		OnEmit:    chain(h.OnEmit, other.OnEmit),
		OnDone:    chain(h.OnDone, other.OnDone),
	}
}

func chain(a, b func(*Event)) func(*Event) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e *Event) {
		a(e)
		b(e)
	}
}
