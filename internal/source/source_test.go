package source

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/logger"
	"github.com/stretchr/testify/require"
)

var testPool = common.HexToAddress("0x5777d92f208679DB4b9778590Fa3CAB3aC9e2168")

func newTestSource() *LogSource {
	dec := decoder.New(testPool, logger.NewNopLogger())
	return NewLogSource(nil, dec, testPool, logger.NewNopLogger())
}

func testHeader(height uint64) *types.Header {
	return &types.Header{
		Number:     big.NewInt(int64(height)),
		ParentHash: common.HexToHash("0xaaaa"),
	}
}

func swapLog(height uint64, amount0, amount1 *big.Int) types.Log {
	word := func(v *big.Int) []byte {
		w := new(big.Int).Set(v)
		if w.Sign() < 0 {
			w.Add(w, new(big.Int).Lsh(big.NewInt(1), 256))
		}
		return w.FillBytes(make([]byte, 32))
	}

	data := append(word(amount0), word(amount1)...)
	data = append(data, make([]byte, 3*32)...)

	return types.Log{
		Address: testPool,
		Topics: []common.Hash{
			decoder.SwapTopic(),
			common.HexToHash("0x01"),
			common.HexToHash("0x02"),
		},
		Data:        data,
		BlockNumber: height,
	}
}

func TestRecordFromLogs(t *testing.T) {
	t.Parallel()

	s := newTestSource()
	header := testHeader(42)

	logs := []types.Log{
		swapLog(42, big.NewInt(100), big.NewInt(-99)),
		{Address: common.HexToAddress("0x9999999999999999999999999999999999999999")},
		swapLog(42, big.NewInt(-7), big.NewInt(7)),
	}

	record, err := s.recordFromLogs(header, logs)
	require.NoError(t, err)

	require.Equal(t, uint64(42), record.Height)
	require.Equal(t, header.Hash(), record.Hash)
	require.Equal(t, header.ParentHash, record.ParentHash)

	// The foreign log is dropped, the two pool swaps survive in order.
	require.Len(t, record.Candidates, 2)
	require.Equal(t, decoder.DirectionDAIToUSDC, record.Candidates[0].Direction)
	require.Equal(t, decoder.DirectionUSDCToDAI, record.Candidates[1].Direction)
}

func TestRecordFromLogs_MalformedLogFails(t *testing.T) {
	t.Parallel()

	s := newTestSource()

	lg := swapLog(42, big.NewInt(100), big.NewInt(-99))
	lg.Data = lg.Data[:16]

	_, err := s.recordFromLogs(testHeader(42), []types.Log{lg})

	var malformed *decoder.MalformedLogError
	require.ErrorAs(t, err, &malformed)
}

func TestFetchRange_InvalidRange(t *testing.T) {
	t.Parallel()

	s := newTestSource()

	_, err := s.FetchRange(context.Background(), 10, 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid range")
}
