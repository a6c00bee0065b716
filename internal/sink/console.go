package sink

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/logger"
)

// Token decimals for the DAI/USDC pool.
const (
	DAIDecimals  = 18
	USDCDecimals = 6
)

// ConsoleSink writes confirmed swaps to a writer in human-readable form,
// with raw token amounts rendered as decimal strings.
type ConsoleSink struct {
	out io.Writer
	log *logger.Logger
}

// NewConsoleSink creates a console sink writing to stdout.
func NewConsoleSink(log *logger.Logger) *ConsoleSink {
	return NewConsoleSinkWithWriter(os.Stdout, log)
}

// NewConsoleSinkWithWriter creates a console sink writing to the given writer.
func NewConsoleSinkWithWriter(out io.Writer, log *logger.Logger) *ConsoleSink {
	return &ConsoleSink{
		out: out,
		log: log,
	}
}

func (c *ConsoleSink) Emit(ctx context.Context, event *decoder.SwapEvent) error {
	_, err := fmt.Fprintf(c.out,
		"Block %d | Swap %s: sender: %s, recipient: %s, amount0: %s DAI, amount1: %s USDC\n",
		event.BlockNumber,
		event.Direction,
		event.Sender.Hex(),
		event.Recipient.Hex(),
		FormatAmount(event.Amount0, DAIDecimals),
		FormatAmount(event.Amount1, USDCDecimals),
	)
	if err != nil {
		return fmt.Errorf("failed to write swap: %w", err)
	}
	return nil
}

func (c *ConsoleSink) Close() error {
	return nil
}

// FormatAmount renders a raw token amount as a decimal string, scaling by
// the token's decimals and trimming trailing zeros from the fraction.
func FormatAmount(amount *big.Int, decimals uint) string {
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)

	abs := new(big.Int).Abs(amount)
	quotient, remainder := new(big.Int).QuoRem(abs, factor, new(big.Int))

	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}

	if remainder.Sign() == 0 {
		return sign + quotient.String()
	}

	frac := fmt.Sprintf("%0*s", decimals, remainder.String())
	frac = strings.TrimRight(frac, "0")

	return fmt.Sprintf("%s%s.%s", sign, quotient.String(), frac)
}
