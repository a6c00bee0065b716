package ledger

import "fmt"

// ResultKind classifies the outcome of a single Observe call.
type ResultKind int

const (
	// Appended: the block extended the canonical chain and became the head.
	Appended ResultKind = iota

	// Duplicate: the block was already retained with the same hash; no-op.
	Duplicate

	// ReorgDetected: a retained block was contradicted by the incoming one.
	ReorgDetected

	// GapDetected: the incoming block skipped over unseen heights.
	GapDetected
)

// String returns the string representation of ResultKind.
func (k ResultKind) String() string {
	switch k {
	case Appended:
		return "appended"
	case Duplicate:
		return "duplicate"
	case ReorgDetected:
		return "reorg-detected"
	case GapDetected:
		return "gap-detected"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ObserveResult is the classification of one observed block.
// AtHeight/Depth are set for ReorgDetected, Expected/Got for GapDetected.
type ObserveResult struct {
	Kind ResultKind

	// ReorgDetected: height of the replaced block and how far below head it sits.
	AtHeight uint64
	Depth    uint64

	// GapDetected: the next height the ledger expected and the one it got.
	Expected uint64
	Got      uint64
}
