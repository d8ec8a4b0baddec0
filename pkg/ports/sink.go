package ports

import "github.com/aretw0/beatbox/pkg/domain"

// SampleSink consumes terminals as they are produced.
type SampleSink interface {
	Write(sym domain.Symbol) error
}

// SinkFunc adapts a function to SampleSink.
type SinkFunc func(sym domain.Symbol) error

// Write calls f(sym).
func (f SinkFunc) Write(sym domain.Symbol) error {
	return f(sym)
}
