package decoder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pouladzade/swapwatch/internal/logger"
)

const (
	// Uniswap v3 Swap events carry the event signature plus two indexed
	// address parameters (sender, recipient).
	expectedTopicsCount = 3

	// The non-indexed part of a Swap event:
	// amount0 (int256), amount1 (int256), sqrtPriceX96 (uint160),
	// liquidity (uint128), tick (int24) - five 32-byte words.
	expectedDataSize = 5 * 32

	wordSize = 32
)

// SwapEventSignature is the canonical Uniswap v3 Swap event signature.
const SwapEventSignature = "Swap(address,address,int256,int256,uint160,uint128,int24)"

// SwapTopic returns the topic hash of the Uniswap v3 Swap event.
func SwapTopic() common.Hash {
	return crypto.Keccak256Hash([]byte(SwapEventSignature))
}

// Decoder turns raw pool logs into SwapEvent values.
type Decoder struct {
	pool  common.Address
	topic common.Hash
	log   *logger.Logger
}

// New creates a Decoder for the given pool contract.
func New(pool common.Address, log *logger.Logger) *Decoder {
	return &Decoder{
		pool:  pool,
		topic: SwapTopic(),
		log:   log.WithComponent("decoder"),
	}
}

// Decode maps a raw log to a SwapEvent.
// Logs that do not match the pool address or the Swap topic produce (nil, nil).
// A log that matches the topic but has a malformed shape returns a
// MalformedLogError: that indicates an ABI mismatch, and the caller must not
// continue decoding further logs.
func (d *Decoder) Decode(lg types.Log) (*SwapEvent, error) {
	if lg.Address != d.pool {
		return nil, nil
	}
	if len(lg.Topics) == 0 || lg.Topics[0] != d.topic {
		return nil, nil
	}

	if len(lg.Topics) < expectedTopicsCount {
		return nil, newMalformedLogError(lg, "expected %d topics, got %d", expectedTopicsCount, len(lg.Topics))
	}
	if len(lg.Data) < expectedDataSize {
		return nil, newMalformedLogError(lg, "expected at least %d data bytes, got %d", expectedDataSize, len(lg.Data))
	}

	// Indexed address parameters occupy the last 20 bytes of their topic.
	sender := common.BytesToAddress(lg.Topics[1].Bytes())
	recipient := common.BytesToAddress(lg.Topics[2].Bytes())

	amount0 := SignedFromWord(lg.Data[:wordSize])
	amount1 := SignedFromWord(lg.Data[wordSize : 2*wordSize])

	evt := &SwapEvent{
		BlockNumber: lg.BlockNumber,
		BlockHash:   lg.BlockHash,
		TxHash:      lg.TxHash,
		LogIndex:    lg.Index,
		Sender:      sender,
		Recipient:   recipient,
		Amount0:     amount0,
		Amount1:     amount1,
		Direction:   DeriveDirection(amount0, amount1),
	}

	d.log.Debugw("decoded swap",
		"block", evt.BlockNumber,
		"tx", evt.TxHash.Hex(),
		"log_index", evt.LogIndex,
		"direction", evt.Direction,
	)

	return evt, nil
}

// SignedFromWord interprets a 32-byte ABI word as a two's complement int256.
func SignedFromWord(word []byte) *big.Int {
	v := new(big.Int).SetBytes(word)
	if v.Bit(255) == 1 {
		v.Sub(v, twoPow256)
	}
	return v
}

var twoPow256 = new(big.Int).Lsh(big.NewInt(1), 256)
