package sink

import (
	"context"

	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/store"
)

// StoreSink archives confirmed swaps in the swap store.
type StoreSink struct {
	store *store.SwapStore
}

// NewStoreSink creates a sink backed by the given swap store.
func NewStoreSink(s *store.SwapStore) *StoreSink {
	return &StoreSink{store: s}
}

func (s *StoreSink) Emit(ctx context.Context, event *decoder.SwapEvent) error {
	return s.store.InsertSwaps(ctx, []*decoder.SwapEvent{event})
}

func (s *StoreSink) Close() error {
	return s.store.Close()
}
