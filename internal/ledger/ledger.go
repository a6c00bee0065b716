package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/logger"
)

// BlockRecord is one observed block together with the swap candidates
// decoded from it, in log-index order.
type BlockRecord struct {
	Height     uint64
	Hash       common.Hash
	ParentHash common.Hash
	Candidates []*decoder.SwapEvent
}

// Ledger is the in-memory record of recently observed blocks. It accepts
// blocks strictly in arrival order, verifies parent-hash continuity and
// detects competing blocks at already-seen heights. Not safe for concurrent
// use; all mutations go through the single watcher loop.
type Ledger struct {
	retainedDepth uint64

	headHeight uint64
	headHash   common.Hash
	records    map[uint64]*BlockRecord

	log *logger.Logger
}

// New creates an empty ledger retaining retainedDepth blocks behind head
// (confirmation depth plus buffer slack).
func New(retainedDepth uint64, log *logger.Logger) *Ledger {
	return &Ledger{
		retainedDepth: retainedDepth,
		records:       make(map[uint64]*BlockRecord),
		log:           log.WithComponent("ledger"),
	}
}

// Empty reports whether the ledger has accepted any block yet.
func (l *Ledger) Empty() bool {
	return len(l.records) == 0
}

// Head returns the highest block currently accepted as canonical.
func (l *Ledger) Head() (uint64, common.Hash) {
	return l.headHeight, l.headHash
}

// Record returns the retained record at the given height, if any.
func (l *Ledger) Record(height uint64) (*BlockRecord, bool) {
	rec, ok := l.records[height]
	return rec, ok
}

// EvictionFloor returns the lowest height still retained.
func (l *Ledger) EvictionFloor() uint64 {
	if l.headHeight <= l.retainedDepth {
		return 0
	}
	return l.headHeight - l.retainedDepth
}

// Observe feeds one block into the ledger and classifies it.
//
// The very first block is accepted unconditionally. After that:
//   - height == head+1 with matching parent hash: appended, head advances.
//   - height == head+1 with a different parent hash: the stored head has
//     been replaced, reported as a depth-1 reorg at the head height.
//   - height <= head: a competing block at an already-seen height; equal
//     hash is a duplicate observation, a different hash is a reorg.
//   - height > head+1: a gap, the caller must re-fetch the missing range.
//
// After every successful append, records older than head-retainedDepth are
// evicted.
func (l *Ledger) Observe(b *BlockRecord) ObserveResult {
	if l.Empty() {
		l.append(b)
		return ObserveResult{Kind: Appended}
	}

	switch {
	case b.Height == l.headHeight+1:
		if b.ParentHash != l.headHash {
			// The head we stored is no longer the parent of the chain tip.
			l.log.Warnw("head replaced by incoming block",
				"height", l.headHeight,
				"stored_hash", l.headHash.Hex(),
				"incoming_parent", b.ParentHash.Hex(),
			)
			return ObserveResult{Kind: ReorgDetected, AtHeight: l.headHeight, Depth: 1}
		}
		l.append(b)
		return ObserveResult{Kind: Appended}

	case b.Height <= l.headHeight:
		if rec, ok := l.records[b.Height]; ok && rec.Hash == b.Hash {
			return ObserveResult{Kind: Duplicate}
		}
		// Below the eviction floor there is no record left to compare
		// against, so even a block whose hash once matched is reported
		// at its full depth. That depth always exceeds retainedDepth and
		// the handler treats it as unrecoverable. A head subscription
		// cannot deliver such a block unless the node itself rewound
		// past the retained window, which is exactly when halting is
		// the right call.
		depth := l.headHeight - b.Height + 1
		l.log.Warnw("competing block at retained height",
			"height", b.Height,
			"incoming_hash", b.Hash.Hex(),
			"depth", depth,
		)
		return ObserveResult{Kind: ReorgDetected, AtHeight: b.Height, Depth: depth}

	default: // b.Height > l.headHeight+1
		return ObserveResult{
			Kind:     GapDetected,
			Expected: l.headHeight + 1,
			Got:      b.Height,
		}
	}
}

// Rewind discards all retained records at height >= fromHeight and resets
// the head to the record just below. Used for bounded reorg recovery; the
// caller re-fetches blocks from fromHeight onward afterwards.
func (l *Ledger) Rewind(fromHeight uint64) error {
	prev, ok := l.records[fromHeight-1]
	if !ok {
		return fmt.Errorf("cannot rewind to height %d: no retained record at %d", fromHeight, fromHeight-1)
	}

	dropped := 0
	for h := fromHeight; h <= l.headHeight; h++ {
		if _, ok := l.records[h]; ok {
			delete(l.records, h)
			dropped++
		}
	}

	l.headHeight = prev.Height
	l.headHash = prev.Hash

	l.log.Infow("rewound ledger",
		"new_head", l.headHeight,
		"new_head_hash", l.headHash.Hex(),
		"dropped_blocks", dropped,
	)

	return nil
}

func (l *Ledger) append(b *BlockRecord) {
	l.records[b.Height] = b
	l.headHeight = b.Height
	l.headHash = b.Hash

	l.evict()

	l.log.Debugw("appended block",
		"height", b.Height,
		"hash", b.Hash.Hex(),
		"candidates", len(b.Candidates),
		"retained", len(l.records),
	)
}

// evict drops records below the eviction floor. Evicted blocks are already
// confirmed and emitted, they are only kept for reorg comparison.
func (l *Ledger) evict() {
	floor := l.EvictionFloor()
	for h := range l.records {
		if h < floor {
			delete(l.records, h)
		}
	}
}
