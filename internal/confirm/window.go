package confirm

import (
	"iter"

	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/ledger"
	"github.com/pouladzade/swapwatch/internal/logger"
)

// RecordSource is the read-only view of the ledger the window needs.
type RecordSource interface {
	Record(height uint64) (*ledger.BlockRecord, bool)
	EvictionFloor() uint64
}

// Window releases swap candidates once their block is buried under the
// configured number of descendant blocks. It tracks a watermark of the next
// unconfirmed height so a height is never re-emitted once passed.
//
// Confirmation and eviction are independent: the watermark always trails the
// eviction floor by at most the buffer slack, so a confirmable block is
// always still retained.
type Window struct {
	depth uint64
	next  uint64

	log *logger.Logger
}

// NewWindow creates a confirmation window with the given depth.
func NewWindow(depth uint64, log *logger.Logger) *Window {
	return &Window{
		depth: depth,
		log:   log.WithComponent("confirmation"),
	}
}

// ConfirmedUpTo returns the highest height that has been confirmed and
// emitted, or 0 if nothing has been confirmed yet.
func (w *Window) ConfirmedUpTo() uint64 {
	if w.next == 0 {
		return 0
	}
	return w.next - 1
}

// Advance returns a lazy sequence of the candidates that became confirmable
// at the given head height, in ascending height then log-index order.
// The watermark moves as heights are fully consumed; aborting the sequence
// mid-height leaves that height unconfirmed, and a later Advance yields it
// again from the start.
func (w *Window) Advance(headHeight uint64, src RecordSource) iter.Seq[*decoder.SwapEvent] {
	return func(yield func(*decoder.SwapEvent) bool) {
		if headHeight < w.depth {
			return
		}
		boundary := headHeight - w.depth

		// Heights below the eviction floor were confirmed before they
		// were evicted; never walk below it.
		if floor := src.EvictionFloor(); w.next < floor {
			w.next = floor
		}

		for h := w.next; h <= boundary; h++ {
			if rec, ok := src.Record(h); ok && len(rec.Candidates) > 0 {
				w.log.Debugw("confirming block",
					"height", h,
					"candidates", len(rec.Candidates),
					"head", headHeight,
				)
				for _, evt := range rec.Candidates {
					if !yield(evt) {
						return
					}
				}
			}
			w.next = h + 1
		}
	}
}
