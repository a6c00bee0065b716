package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/ledger"
	"github.com/pouladzade/swapwatch/internal/logger"
	"github.com/pouladzade/swapwatch/internal/metrics"
	"github.com/pouladzade/swapwatch/internal/rpc"
)

// headChannelSize buffers new-head notifications so a slow block fetch does
// not stall the subscription.
const headChannelSize = 64

// ErrSourceClosed is returned by Next after Stop has been called.
var ErrSourceClosed = errors.New("log source closed")

// LogSource streams blocks from the chain head subscription. For every new
// head it fetches the pool's Swap logs pinned to that exact block hash and
// decodes them into candidate events.
type LogSource struct {
	client *rpc.Client
	dec    *decoder.Decoder
	pool   common.Address
	log    *logger.Logger

	headCh chan *types.Header
	sub    ethereum.Subscription
}

// NewLogSource creates a log source for the given pool.
func NewLogSource(client *rpc.Client, dec *decoder.Decoder, pool common.Address, log *logger.Logger) *LogSource {
	return &LogSource{
		client: client,
		dec:    dec,
		pool:   pool,
		log:    log,
	}
}

// Start subscribes to new chain heads. It must be called before Next.
func (s *LogSource) Start(ctx context.Context) error {
	s.headCh = make(chan *types.Header, headChannelSize)

	sub, err := s.client.SubscribeNewHeads(ctx, s.headCh)
	if err != nil {
		return fmt.Errorf("failed to subscribe to new heads: %w", err)
	}
	s.sub = sub

	s.log.Infof("Subscribed to new heads, watching pool %s", s.pool.Hex())

	return nil
}

// Next blocks until the next head arrives and returns the block record for
// it, with the pool's decoded Swap events attached as candidates.
func (s *LogSource) Next(ctx context.Context) (*ledger.BlockRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case err, ok := <-s.sub.Err():
		if !ok || err == nil {
			return nil, ErrSourceClosed
		}
		return nil, fmt.Errorf("head subscription failed: %w", err)

	case header := <-s.headCh:
		return s.buildRecord(ctx, header)
	}
}

// FetchRange retrieves the blocks in [fromBlock, toBlock] by number, with
// logs fetched against each block's reported hash. It is used to backfill
// gaps in the head stream.
func (s *LogSource) FetchRange(ctx context.Context, fromBlock, toBlock uint64) ([]*ledger.BlockRecord, error) {
	if fromBlock > toBlock {
		return nil, fmt.Errorf("invalid range [%d, %d]", fromBlock, toBlock)
	}

	blockNums := make([]uint64, 0, toBlock-fromBlock+1)
	for num := fromBlock; num <= toBlock; num++ {
		blockNums = append(blockNums, num)
	}

	headers, err := s.client.BatchGetBlockHeaders(ctx, blockNums)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch headers for range [%d, %d]: %w", fromBlock, toBlock, err)
	}

	queries := make([]ethereum.FilterQuery, len(headers))
	for i, header := range headers {
		if header == nil {
			return nil, fmt.Errorf("block %d not available from node", blockNums[i])
		}
		hash := header.Hash()
		queries[i] = ethereum.FilterQuery{
			BlockHash: &hash,
			Addresses: []common.Address{s.pool},
			Topics:    [][]common.Hash{{decoder.SwapTopic()}},
		}
	}

	logsPerBlock, err := s.client.BatchGetLogs(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs for range [%d, %d]: %w", fromBlock, toBlock, err)
	}

	records := make([]*ledger.BlockRecord, len(headers))
	for i, header := range headers {
		record, err := s.recordFromLogs(header, logsPerBlock[i])
		if err != nil {
			return nil, err
		}
		records[i] = record
	}

	s.log.Debugf("Fetched %d blocks for range [%d, %d]", len(records), fromBlock, toBlock)

	return records, nil
}

// Stop unsubscribes from the head stream.
func (s *LogSource) Stop() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
}

func (s *LogSource) buildRecord(ctx context.Context, header *types.Header) (*ledger.BlockRecord, error) {
	hash := header.Hash()

	logs, err := s.client.GetLogsByBlockHash(
		ctx,
		hash,
		[]common.Address{s.pool},
		[][]common.Hash{{decoder.SwapTopic()}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs for block %d (%s): %w",
			header.Number.Uint64(), hash.Hex(), err)
	}

	return s.recordFromLogs(header, logs)
}

func (s *LogSource) recordFromLogs(header *types.Header, logs []types.Log) (*ledger.BlockRecord, error) {
	record := &ledger.BlockRecord{
		Height:     header.Number.Uint64(),
		Hash:       header.Hash(),
		ParentHash: header.ParentHash,
	}

	for _, lg := range logs {
		event, err := s.dec.Decode(lg)
		if err != nil {
			metrics.MalformedLogs.Inc()
			return nil, err
		}
		if event == nil {
			continue
		}
		record.Candidates = append(record.Candidates, event)
	}

	metrics.SwapsDecodedInc(len(record.Candidates))

	if len(record.Candidates) > 0 {
		s.log.Debugf("Block %d carries %d swap candidates", record.Height, len(record.Candidates))
	}

	return record, nil
}
