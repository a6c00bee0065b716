package reorg

import (
	"github.com/pouladzade/swapwatch/internal/ledger"
	"github.com/pouladzade/swapwatch/internal/logger"
)

// ActionKind is the policy decision for a detected reorg.
type ActionKind int

const (
	// Recover: the replaced block is still inside the retained, unconfirmed
	// window. Drop the invalidated records and re-fetch from FromHeight.
	Recover ActionKind = iota

	// Fatal: the reorg reaches into blocks that were already confirmed and
	// evicted. What was emitted can no longer be trusted to be canonical,
	// so the process must halt instead of continuing.
	Fatal
)

// String returns the string representation of ActionKind.
func (k ActionKind) String() string {
	if k == Recover {
		return "recover"
	}
	return "fatal"
}

// Action tells the caller how to react to a reorg.
// FromHeight is set for Recover.
type Action struct {
	Kind       ActionKind
	FromHeight uint64
}

// Handler decides between local recovery and fatal abort when the ledger
// reports a replaced block.
type Handler struct {
	recoverableDepth uint64
	log              *logger.Logger
}

// NewHandler creates a Handler. recoverableDepth is the full retained window:
// confirmation depth plus buffer slack.
func NewHandler(recoverableDepth uint64, log *logger.Logger) *Handler {
	return &Handler{
		recoverableDepth: recoverableDepth,
		log:              log.WithComponent("reorg-handler"),
	}
}

// RecoverableDepth returns the deepest reorg the handler will recover from.
func (h *Handler) RecoverableDepth() uint64 {
	return h.recoverableDepth
}

// Handle maps a ReorgDetected observe result to an Action.
//
// A reorg is recoverable while its depth stays within the retained window:
// none of the replaced blocks were emitted yet, so discarding and
// re-deriving them is safe. Anything deeper contradicts already-emitted
// output and is fatal. The confirmation depth exceeding realistic reorg
// depth is the system's correctness argument, not a runtime check.
func (h *Handler) Handle(res ledger.ObserveResult) Action {
	observeReorg(res.Depth, res.AtHeight)

	if res.Depth <= h.recoverableDepth {
		h.log.Warnw("recoverable reorg",
			"at_height", res.AtHeight,
			"depth", res.Depth,
			"recoverable_depth", h.recoverableDepth,
		)
		recoveriesTotal.Inc()
		return Action{Kind: Recover, FromHeight: res.AtHeight}
	}

	h.log.Errorw("unrecoverable reorg",
		"at_height", res.AtHeight,
		"depth", res.Depth,
		"recoverable_depth", h.recoverableDepth,
	)
	fatalTotal.Inc()
	return Action{Kind: Fatal}
}
