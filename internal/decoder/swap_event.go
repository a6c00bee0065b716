package decoder

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Direction describes which way a swap moved through the pool.
// For the DAI/USDC pool token0 is DAI and token1 is USDC, so a positive
// amount0 means DAI flowed in and USDC flowed out.
type Direction string

const (
	DirectionDAIToUSDC Direction = "DAI -> USDC"
	DirectionUSDCToDAI Direction = "USDC -> DAI"
	DirectionUnknown   Direction = "unknown"
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	return string(d)
}

// DeriveDirection derives the swap direction from the signs of the two
// pool amounts. Amounts are pool-relative: positive flows into the pool.
func DeriveDirection(amount0, amount1 *big.Int) Direction {
	switch {
	case amount0.Sign() > 0 && amount1.Sign() < 0:
		return DirectionDAIToUSDC
	case amount0.Sign() < 0 && amount1.Sign() > 0:
		return DirectionUSDCToDAI
	default:
		return DirectionUnknown
	}
}

// SwapEvent is a decoded Swap log. It is immutable once constructed;
// confirmation status is tracked by the confirmation window, not here.
type SwapEvent struct {
	BlockNumber uint64
	BlockHash   common.Hash
	TxHash      common.Hash
	LogIndex    uint

	Sender    common.Address
	Recipient common.Address

	// Amount0 is the DAI side, Amount1 the USDC side, both in raw token
	// units as signed pool-relative quantities.
	Amount0 *big.Int
	Amount1 *big.Int

	Direction Direction
}

// Key uniquely identifies a swap event on the canonical chain.
type Key struct {
	TxHash   common.Hash
	LogIndex uint
}

// Key returns the event's unique identity.
func (e *SwapEvent) Key() Key {
	return Key{TxHash: e.TxHash, LogIndex: e.LogIndex}
}

// MalformedLogError reports a log that matched the Swap topic but could not
// be decoded. It invalidates all further decoding (ABI mismatch), so callers
// treat it as fatal.
type MalformedLogError struct {
	TxHash   common.Hash
	LogIndex uint
	Reason   string
}

func (e *MalformedLogError) Error() string {
	return fmt.Sprintf("malformed swap log %s[%d]: %s", e.TxHash.Hex(), e.LogIndex, e.Reason)
}

func newMalformedLogError(lg types.Log, format string, args ...any) error {
	return &MalformedLogError{
		TxHash:   lg.TxHash,
		LogIndex: lg.Index,
		Reason:   fmt.Sprintf(format, args...),
	}
}
