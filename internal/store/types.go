package store

import "github.com/ethereum/go-ethereum/common"

// dbSwap represents a confirmed swap row in the database
type dbSwap struct {
	ID          int64          `meddler:"id,pk"`
	BlockNumber uint64         `meddler:"block_number"`
	BlockHash   common.Hash    `meddler:"block_hash,hash"`
	TxHash      common.Hash    `meddler:"tx_hash,hash"`
	LogIndex    uint           `meddler:"log_index"`
	Sender      common.Address `meddler:"sender,address"`
	Recipient   common.Address `meddler:"recipient,address"`
	Amount0     string         `meddler:"amount0"`
	Amount1     string         `meddler:"amount1"`
	Direction   string         `meddler:"direction"`
	CreatedAt   string         `meddler:"created_at"`
}
