package engine

import (
	"context"

	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/hid"
	"github.com/hbarlabs/sswap/internal/registry"
)

// Narrow entry points for native-HBAR flows. Same wrap/unwrap and
// atomicity semantics as Swap, restricted to pairs with a native side.

// SwapFromHBAR swaps native HBAR for an HTS token. The router wraps the
// attached value into WHBAR before routing.
func (e *Engine) SwapFromHBAR(ctx context.Context, tokenOut string, amount hid.DecimalAmount, decimalsOut int, slippage float64, fee uint32, deadline hid.DeadlineMillis) (SwapResult, error) {
	if isNative(tokenOut) {
		return SwapResult{}, swaperr.New(swaperr.CodeUsage, "output token must not be HBAR")
	}
	return e.Swap(ctx, SwapRequest{
		TokenIn:     registry.NativeSymbol,
		TokenOut:    tokenOut,
		Amount:      amount,
		DecimalsIn:  registry.HBARDecimals,
		DecimalsOut: decimalsOut,
		Slippage:    slippage,
		Fee:         fee,
		Deadline:    deadline,
	})
}

// SwapToHBAR swaps an HTS token for native HBAR via an atomic multicall
// of exactInput and unwrapWHBAR.
func (e *Engine) SwapToHBAR(ctx context.Context, tokenIn string, amount hid.DecimalAmount, decimalsIn int, slippage float64, fee uint32, deadline hid.DeadlineMillis) (SwapResult, error) {
	if isNative(tokenIn) {
		return SwapResult{}, swaperr.New(swaperr.CodeUsage, "input token must not be HBAR")
	}
	return e.Swap(ctx, SwapRequest{
		TokenIn:     tokenIn,
		TokenOut:    registry.NativeSymbol,
		Amount:      amount,
		DecimalsIn:  decimalsIn,
		DecimalsOut: registry.HBARDecimals,
		Slippage:    slippage,
		Fee:         fee,
		Deadline:    deadline,
	})
}
