package sink

import (
	"context"

	"github.com/pouladzade/swapwatch/internal/decoder"
)

// Sink consumes confirmed swap events. Events arrive in canonical order,
// each exactly once.
type Sink interface {
	Emit(ctx context.Context, event *decoder.SwapEvent) error
	Close() error
}

// MultiSink fans confirmed events out to several sinks in order.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink that forwards each event to all given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Emit(ctx context.Context, event *decoder.SwapEvent) error {
	for _, s := range m.sinks {
		if err := s.Emit(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
