package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/logger"
	"github.com/pouladzade/swapwatch/internal/metrics"
	"github.com/russross/meddler"
)

const dbName = "swap_archive"

// SwapStore persists confirmed swap events in SQLite.
type SwapStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSwapStore creates a new SQLite-backed SwapStore.
func NewSwapStore(db *sql.DB, log *logger.Logger) *SwapStore {
	return &SwapStore{
		db:  db,
		log: log,
	}
}

// InsertSwaps saves confirmed swaps in a single transaction. Rows that
// already exist for the same (tx_hash, log_index) are left untouched, so
// re-inserting after a restart is safe.
func (s *SwapStore) InsertSwaps(ctx context.Context, events []*decoder.SwapEvent) error {
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	metrics.DBQueryInc(dbName, "insert_swaps")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.DBErrorsInc(dbName, "begin_tx")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.log.Errorf("failed to rollback transaction: %v", err)
		}
	}()

	inserted := 0
	for _, event := range events {
		row := swapToDbSwap(event)

		if err := meddler.Insert(tx, "confirmed_swaps", row); err != nil {
			if isConstraintViolation(err) {
				// Already archived under the same (tx_hash, log_index),
				// typically after a restart replaying a confirmed block.
				continue
			}
			metrics.DBErrorsInc(dbName, "insert")
			return fmt.Errorf("failed to archive swap %s/%d: %w", event.TxHash.Hex(), event.LogIndex, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		metrics.DBErrorsInc(dbName, "commit")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.DBQueryDuration(dbName, "insert_swaps", time.Since(start))
	s.log.Debugf("Archived %d/%d confirmed swaps", inserted, len(events))

	return nil
}

// GetSwaps retrieves confirmed swaps for the given block range, ordered by
// block number and log index.
func (s *SwapStore) GetSwaps(ctx context.Context, fromBlock, toBlock uint64) ([]*decoder.SwapEvent, error) {
	metrics.DBQueryInc(dbName, "get_swaps")

	const query = `
		SELECT * FROM confirmed_swaps
		WHERE block_number >= ? AND block_number <= ?
		ORDER BY block_number ASC, log_index ASC
	`

	var rows []*dbSwap
	if err := meddler.QueryAll(s.db, &rows, query, fromBlock, toBlock); err != nil {
		metrics.DBErrorsInc(dbName, "query")
		return nil, fmt.Errorf("failed to query swaps: %w", err)
	}

	events := make([]*decoder.SwapEvent, len(rows))
	for i, row := range rows {
		event, err := dbSwapToSwap(row)
		if err != nil {
			return nil, fmt.Errorf("failed to convert db swap: %w", err)
		}
		events[i] = event
	}

	return events, nil
}

// LatestBlockNumber returns the highest block number with an archived swap.
// The second return value is false when the archive is empty.
func (s *SwapStore) LatestBlockNumber(ctx context.Context) (uint64, bool, error) {
	metrics.DBQueryInc(dbName, "latest_block")

	var latest sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(block_number) FROM confirmed_swaps").Scan(&latest)
	if err != nil {
		metrics.DBErrorsInc(dbName, "query")
		return 0, false, fmt.Errorf("failed to query latest block: %w", err)
	}

	if !latest.Valid {
		return 0, false, nil
	}

	return uint64(latest.Int64), true, nil
}

// Count returns the number of archived swaps.
func (s *SwapStore) Count(ctx context.Context) (uint64, error) {
	metrics.DBQueryInc(dbName, "count")

	var count uint64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM confirmed_swaps").Scan(&count)
	if err != nil {
		metrics.DBErrorsInc(dbName, "query")
		return 0, fmt.Errorf("failed to count swaps: %w", err)
	}

	return count, nil
}

// Close closes the swap store.
func (s *SwapStore) Close() error {
	// The database connection is managed externally, so we don't close it here
	return nil
}

// isConstraintViolation unwraps meddler's error envelope and reports whether
// the driver rejected the row over a constraint, i.e. the UNIQUE index on
// (tx_hash, log_index).
func isConstraintViolation(err error) bool {
	if driverErr, ok := meddler.DriverErr(err); ok {
		err = driverErr
	}

	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func swapToDbSwap(event *decoder.SwapEvent) *dbSwap {
	return &dbSwap{
		BlockNumber: event.BlockNumber,
		BlockHash:   event.BlockHash,
		TxHash:      event.TxHash,
		LogIndex:    event.LogIndex,
		Sender:      event.Sender,
		Recipient:   event.Recipient,
		Amount0:     event.Amount0.String(),
		Amount1:     event.Amount1.String(),
		Direction:   string(event.Direction),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

func dbSwapToSwap(row *dbSwap) (*decoder.SwapEvent, error) {
	amount0, ok := new(big.Int).SetString(row.Amount0, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount0 %q", row.Amount0)
	}

	amount1, ok := new(big.Int).SetString(row.Amount1, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount1 %q", row.Amount1)
	}

	return &decoder.SwapEvent{
		BlockNumber: row.BlockNumber,
		BlockHash:   row.BlockHash,
		TxHash:      row.TxHash,
		LogIndex:    row.LogIndex,
		Sender:      row.Sender,
		Recipient:   row.Recipient,
		Amount0:     amount0,
		Amount1:     amount1,
		Direction:   decoder.Direction(row.Direction),
	}, nil
}
