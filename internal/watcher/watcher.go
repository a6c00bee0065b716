package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pouladzade/swapwatch/internal/confirm"
	"github.com/pouladzade/swapwatch/internal/ledger"
	"github.com/pouladzade/swapwatch/internal/logger"
	"github.com/pouladzade/swapwatch/internal/metrics"
	"github.com/pouladzade/swapwatch/internal/reorg"
	"github.com/pouladzade/swapwatch/internal/sink"
	"github.com/pouladzade/swapwatch/pkg/config"
)

// State is the watcher's lifecycle state.
type State string

const (
	// StateSyncing: no block accepted yet, waiting for the first head.
	StateSyncing State = "syncing"
	// StateTracking: following the chain head, confirming and emitting.
	StateTracking State = "tracking"
	// StateRecovering: a bounded reorg was detected, rewinding and
	// re-deriving the replaced blocks.
	StateRecovering State = "recovering"
	// StateHalted: an unrecoverable reorg contradicted emitted output.
	StateHalted State = "halted"
)

// AllStates lists every watcher state, for metrics.
var AllStates = []string{
	string(StateSyncing),
	string(StateTracking),
	string(StateRecovering),
	string(StateHalted),
}

// Source produces blocks for the watcher, either streamed from the head
// subscription or fetched by number to fill gaps.
type Source interface {
	Start(ctx context.Context) error
	Next(ctx context.Context) (*ledger.BlockRecord, error)
	FetchRange(ctx context.Context, fromBlock, toBlock uint64) ([]*ledger.BlockRecord, error)
	Stop()
}

// Watcher owns the pipeline from observed blocks to emitted swaps. It is
// the single writer: ledger, window and sink are only touched from Run's
// goroutine, so none of them need locking.
type Watcher struct {
	source  Source
	ledger  *ledger.Ledger
	window  *confirm.Window
	handler *reorg.Handler
	sink    sink.Sink
	log     *logger.Logger

	state State
}

// New creates a watcher wired to the given components.
func New(cfg *config.WatcherConfig, source Source, out sink.Sink, log *logger.Logger) *Watcher {
	return &Watcher{
		source:  source,
		ledger:  ledger.New(cfg.RetainedDepth(), log),
		window:  confirm.NewWindow(cfg.ConfirmationDepth, log),
		handler: reorg.NewHandler(cfg.RetainedDepth(), log),
		sink:    out,
		log:     log.WithComponent("watcher"),
		state:   StateSyncing,
	}
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	return w.state
}

// Run drives the watcher until the context is cancelled or a fatal
// condition stops it. A cancelled context is a graceful shutdown and
// returns nil; an unrecoverable reorg returns UnrecoverableReorgError.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.source.Start(ctx); err != nil {
		return err
	}
	defer w.source.Stop()

	w.setState(StateSyncing)

	for {
		block, err := w.source.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				w.log.Info("Shutting down")
				return nil
			}
			metrics.ErrorsInc("log-source", "fatal")
			return err
		}

		start := time.Now()
		if err := w.processBlock(ctx, block); err != nil {
			metrics.ErrorsInc("watcher", "fatal")
			return err
		}
		metrics.BlockProcessingTimeLog(time.Since(start))
	}
}

// processBlock feeds one block through the ledger and reacts to the
// classification. Gap fill and reorg recovery both end by re-processing
// the triggering block against the repaired ledger.
func (w *Watcher) processBlock(ctx context.Context, block *ledger.BlockRecord) error {
	res := w.ledger.Observe(block)
	metrics.BlockObservedInc(res.Kind.String())

	switch res.Kind {
	case ledger.Appended:
		w.setState(StateTracking)

		head, _ := w.ledger.Head()
		metrics.HeadHeightSet(head)

		return w.emitConfirmed(ctx, head)

	case ledger.Duplicate:
		w.log.Debugw("duplicate block", "height", block.Height, "hash", block.Hash.Hex())
		return nil

	case ledger.GapDetected:
		metrics.GapsDetected.Inc()
		w.log.Infow("gap in head stream",
			"expected", res.Expected,
			"got", res.Got,
		)

		if err := w.fillGap(ctx, res.Expected, res.Got-1); err != nil {
			return err
		}

		return w.processBlock(ctx, block)

	case ledger.ReorgDetected:
		// A replaced block at or below the watermark contradicts swaps
		// already handed to the sink. No rewind can undo that.
		if confirmed := w.window.ConfirmedUpTo(); confirmed > 0 && res.AtHeight <= confirmed {
			w.setState(StateHalted)
			return reorg.NewUnrecoverableReorgError(res.AtHeight, res.Depth, w.handler.RecoverableDepth())
		}

		action := w.handler.Handle(res)
		if action.Kind == reorg.Fatal {
			w.setState(StateHalted)
			return reorg.NewUnrecoverableReorgError(res.AtHeight, res.Depth, w.handler.RecoverableDepth())
		}

		w.setState(StateRecovering)

		if err := w.ledger.Rewind(action.FromHeight); err != nil {
			w.setState(StateHalted)
			return fmt.Errorf("reorg recovery failed: %w", err)
		}

		// The rewound heights come back either from this block directly
		// or through the gap path against the lowered head.
		return w.processBlock(ctx, block)

	default:
		return fmt.Errorf("unknown observe result %v", res.Kind)
	}
}

// fillGap fetches and processes the missing blocks [fromBlock, toBlock].
func (w *Watcher) fillGap(ctx context.Context, fromBlock, toBlock uint64) error {
	records, err := w.source.FetchRange(ctx, fromBlock, toBlock)
	if err != nil {
		return fmt.Errorf("failed to fill gap [%d, %d]: %w", fromBlock, toBlock, err)
	}

	for _, record := range records {
		if err := w.processBlock(ctx, record); err != nil {
			return err
		}
	}

	return nil
}

// emitConfirmed releases every candidate buried deep enough under the new
// head, in canonical order, exactly once.
func (w *Watcher) emitConfirmed(ctx context.Context, headHeight uint64) error {
	for event := range w.window.Advance(headHeight, w.ledger) {
		if err := w.sink.Emit(ctx, event); err != nil {
			return fmt.Errorf("sink rejected confirmed swap: %w", err)
		}
		metrics.SwapConfirmedInc(event.Direction.String())
	}

	metrics.ConfirmedHeightSet(w.window.ConfirmedUpTo())

	return nil
}

func (w *Watcher) setState(s State) {
	if w.state == s {
		return
	}

	w.log.Infow("state changed", "from", string(w.state), "to", string(s))
	w.state = s
	metrics.WatcherStateSet(string(s), AllStates)
	metrics.ComponentHealthSet("watcher", s != StateHalted)
}
