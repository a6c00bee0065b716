package sink

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/logger"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	mustBig := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		return v
	}

	tests := []struct {
		name     string
		amount   *big.Int
		decimals uint
		want     string
	}{
		{name: "zero", amount: big.NewInt(0), decimals: 18, want: "0"},
		{name: "whole DAI", amount: mustBig("1000000000000000000"), decimals: 18, want: "1"},
		{name: "fraction trimmed", amount: mustBig("1500000000000000000"), decimals: 18, want: "1.5"},
		{name: "small fraction keeps leading zeros", amount: mustBig("1000000000000000001"), decimals: 18, want: "1.000000000000000001"},
		{name: "below one", amount: big.NewInt(123456), decimals: 6, want: "0.123456"},
		{name: "negative whole", amount: mustBig("-2000000"), decimals: 6, want: "-2"},
		{name: "negative fraction", amount: big.NewInt(-500000), decimals: 6, want: "-0.5"},
		{name: "negative mixed", amount: mustBig("-1499500000"), decimals: 6, want: "-1499.5"},
		{name: "no decimals", amount: big.NewInt(42), decimals: 0, want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, FormatAmount(tt.amount, tt.decimals))
		})
	}
}

func TestConsoleSink_Emit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewConsoleSinkWithWriter(&buf, logger.NewNopLogger())

	daiIn, ok := new(big.Int).SetString("1500000000000000000000", 10) // 1500 DAI
	require.True(t, ok)

	event := &decoder.SwapEvent{
		BlockNumber: 123,
		Sender:      common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Recipient:   common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Amount0:     daiIn,
		Amount1:     big.NewInt(-1499_500000),
		Direction:   decoder.DirectionDAIToUSDC,
	}

	require.NoError(t, s.Emit(context.Background(), event))

	out := buf.String()
	require.Contains(t, out, "Block 123 | Swap DAI -> USDC")
	require.Contains(t, out, "0x1111111111111111111111111111111111111111")
	require.Contains(t, out, "amount0: 1500 DAI")
	require.Contains(t, out, "amount1: -1499.5 USDC")
}

func TestMultiSink(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	multi := NewMultiSink(
		NewConsoleSinkWithWriter(&a, logger.NewNopLogger()),
		NewConsoleSinkWithWriter(&b, logger.NewNopLogger()),
	)

	event := &decoder.SwapEvent{
		BlockNumber: 7,
		Amount0:     big.NewInt(-1000000),
		Amount1:     big.NewInt(999999),
		Direction:   decoder.DirectionUSDCToDAI,
	}

	require.NoError(t, multi.Emit(context.Background(), event))
	require.NoError(t, multi.Close())

	require.Equal(t, a.String(), b.String())
	require.Contains(t, a.String(), "Swap USDC -> DAI")
}
