// Package engine orchestrates user-facing swaps: amount normalization,
// quoting, slippage bounds, native HBAR wrap/unwrap composition, and
// submission. The engine holds no state between calls and never retries.
package engine

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/hid"
	"github.com/hbarlabs/sswap/internal/registry"
	"github.com/hbarlabs/sswap/internal/router"
	"github.com/hbarlabs/sswap/internal/signer"
)

// nativeValueDecimals is the precision of transaction value on the
// JSON-RPC relay. Native HBAR attached to a swap is 18-decimal wei even
// though WHBAR itself has 8 decimals.
const nativeValueDecimals = 18

type Engine struct {
	client     *router.Client
	signer     signer.Signer
	log        zerolog.Logger
	now        func() time.Time
	submitOpts router.SubmitOptions
}

func New(client *router.Client, txSigner signer.Signer, log zerolog.Logger) *Engine {
	return &Engine{
		client:     client,
		signer:     txSigner,
		log:        log,
		now:        time.Now,
		submitOpts: router.DefaultSubmitOptions(),
	}
}

// SwapRequest describes one exact-input swap. Token fields take a Hedera
// token id or the HBAR sentinel; symbol resolution happens upstream.
type SwapRequest struct {
	TokenIn     string
	TokenOut    string
	Amount      hid.DecimalAmount
	DecimalsIn  int
	DecimalsOut int

	// Slippage is the tolerated fractional deviation from the quote,
	// in [0,1). The minimum acceptable output is
	// floor(quote * (1 - Slippage)).
	Slippage float64

	// Fee is the pool fee tier; zero selects registry.DefaultFee.
	Fee uint32

	// Deadline is a millisecond Unix timestamp; zero selects
	// now + hid.DefaultDeadlineWindow.
	Deadline hid.DeadlineMillis
}

// SwapResult is returned for every post-validation outcome. Either
// Success is true and TxHash is set, or Error is populated (TxHash may
// still be set when the transaction was mined but reverted).
type SwapResult struct {
	Success   bool
	TxHash    string
	AmountIn  hid.DecimalAmount
	AmountOut hid.DecimalAmount
	GasUsed   uint64
	Error     string
}

// GetQuote returns the expected output for an exact-input swap as a
// decimal amount. Quote failures propagate directly; there is no partial
// state to protect.
func (e *Engine) GetQuote(ctx context.Context, tokenIn, tokenOut string, amount hid.DecimalAmount, decimalsIn, decimalsOut int, fee uint32) (hid.DecimalAmount, error) {
	plan, err := e.planSwap(SwapRequest{
		TokenIn:    tokenIn,
		TokenOut:   tokenOut,
		Amount:     amount,
		DecimalsIn: decimalsIn,
		Fee:        fee,
	})
	if err != nil {
		return hid.DecimalAmount{}, err
	}
	quoted, err := e.client.QuoteExactInput(ctx, plan.path, plan.amountIn)
	if err != nil {
		return hid.DecimalAmount{}, err
	}
	return quoted.ToDecimal(decimalsOut), nil
}

// Swap quotes, builds, signs, and submits one swap transaction. The
// returned error is non-nil only for pre-flight validation failures; any
// failure after validation is reported through SwapResult.Error so
// callers need not wrap the call in error handling.
func (e *Engine) Swap(ctx context.Context, req SwapRequest) (SwapResult, error) {
	plan, err := e.planSwap(req)
	if err != nil {
		return SwapResult{}, err
	}
	if e.signer == nil {
		return SwapResult{}, swaperr.New(swaperr.CodeSigner, "swap requires a configured signer")
	}
	return e.execute(ctx, req, plan), nil
}

func (e *Engine) execute(ctx context.Context, req SwapRequest, plan swapPlan) SwapResult {
	fail := func(err error) SwapResult {
		e.log.Error().Err(err).Msg("swap failed")
		return SwapResult{AmountIn: req.Amount, Error: err.Error()}
	}

	from := e.signer.Address()

	quoted, err := e.client.QuoteExactInput(ctx, plan.path, plan.amountIn)
	if err != nil {
		return fail(err)
	}
	minOut := minimumOut(quoted, req.Slippage)
	e.log.Info().
		Str("token_in", req.TokenIn).
		Str("token_out", req.TokenOut).
		Str("amount_in", plan.amountIn.String()).
		Str("quoted_out", quoted.String()).
		Str("min_out", minOut.String()).
		Int64("deadline_ms", plan.deadline.Int64()).
		Msg("quote received")

	if err := e.checkBalances(ctx, plan, from); err != nil {
		return fail(err)
	}
	if !plan.hbarIn {
		if err := e.ensureAllowance(ctx, plan, from); err != nil {
			return fail(err)
		}
	}

	call, err := e.client.BuildExactInput(router.ExactInputParams{
		Path:            plan.path,
		Deadline:        plan.deadline,
		AmountIn:        plan.amountIn,
		MinOut:          minOut,
		Recipient:       from,
		NativeValue:     plan.nativeValue,
		UnwrapRecipient: plan.unwrapRecipient(from),
	})
	if err != nil {
		return fail(err)
	}

	receipt, err := e.client.Submit(ctx, e.signer, call, e.submitOpts)
	if err != nil {
		result := fail(err)
		if receipt.TxHash != (common.Hash{}) {
			result.TxHash = receipt.TxHash.Hex()
			result.GasUsed = receipt.GasUsed
		}
		return result
	}
	e.log.Info().Str("tx_hash", receipt.TxHash.Hex()).Uint64("gas_used", receipt.GasUsed).Msg("swap confirmed")
	return SwapResult{
		Success:   true,
		TxHash:    receipt.TxHash.Hex(),
		AmountIn:  req.Amount,
		AmountOut: quoted.ToDecimal(req.DecimalsOut),
		GasUsed:   receipt.GasUsed,
	}
}

func (e *Engine) checkBalances(ctx context.Context, plan swapPlan, from common.Address) error {
	if plan.hbarIn {
		balance, err := e.client.NativeBalance(ctx, from)
		if err != nil {
			return err
		}
		if balance.Cmp(plan.nativeValue) < 0 {
			return swaperr.New(swaperr.CodeInsufficient, "insufficient HBAR balance for swap")
		}
	} else {
		balance, err := e.client.TokenBalance(ctx, plan.addrIn, from)
		if err != nil {
			return err
		}
		if balance.Cmp(plan.amountIn.BigInt()) < 0 {
			return swaperr.New(swaperr.CodeInsufficient, "insufficient token balance for swap")
		}
	}
	if !plan.hbarOut {
		// Receiving an HTS token requires prior association; surface that
		// before spending gas on the swap itself.
		if _, err := e.client.TokenBalance(ctx, plan.addrOut, from); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) ensureAllowance(ctx context.Context, plan swapPlan, from common.Address) error {
	allowance, err := e.client.Allowance(ctx, plan.addrIn, from)
	if err != nil {
		return err
	}
	if allowance.Cmp(plan.amountIn.BigInt()) >= 0 {
		return nil
	}
	e.log.Info().Str("token", plan.addrIn.Hex()).Msg("approving router spend")
	call, err := e.client.BuildApprove(plan.addrIn, plan.amountIn)
	if err != nil {
		return err
	}
	receipt, err := e.client.Submit(ctx, e.signer, call, e.submitOpts)
	if err != nil {
		return err
	}
	e.log.Info().Str("tx_hash", receipt.TxHash.Hex()).Msg("approval confirmed")
	return nil
}

// minimumOut computes floor(quoted * (1 - slippage)).
func minimumOut(quoted hid.BaseAmount, slippage float64) hid.BaseAmount {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(slippage))
	minOut := decimal.NewFromBigInt(quoted.BigInt(), 0).Mul(factor).Floor()
	return hid.NewBaseAmount(minOut.BigInt())
}

type swapPlan struct {
	addrIn      common.Address
	addrOut     common.Address
	hbarIn      bool
	hbarOut     bool
	amountIn    hid.BaseAmount
	nativeValue *big.Int
	fee         uint32
	deadline    hid.DeadlineMillis
	path        []byte
}

func (p swapPlan) unwrapRecipient(from common.Address) *common.Address {
	if !p.hbarOut {
		return nil
	}
	return &from
}

// planSwap validates the request and resolves addresses, amounts, path,
// and deadline. No network call happens here; every validation failure
// is raised before the first RPC round trip.
func (e *Engine) planSwap(req SwapRequest) (swapPlan, error) {
	net := e.client.Network()

	if req.Slippage < 0 || req.Slippage >= 1 {
		return swapPlan{}, swaperr.New(swaperr.CodeUsage, fmt.Sprintf("slippage %v outside [0,1)", req.Slippage))
	}
	if !req.Amount.IsPositive() {
		return swapPlan{}, swaperr.New(swaperr.CodeUsage, "swap amount must be positive")
	}
	if req.DecimalsIn < 0 || req.DecimalsOut < 0 {
		return swapPlan{}, swaperr.New(swaperr.CodeUsage, "token decimals must be non-negative")
	}

	plan := swapPlan{
		hbarIn:  isNative(req.TokenIn),
		hbarOut: isNative(req.TokenOut),
		fee:     req.Fee,
	}
	if plan.fee == 0 {
		plan.fee = registry.DefaultFee
	}

	var err error
	if plan.hbarIn {
		plan.addrIn = net.WHBARAddress()
	} else if plan.addrIn, err = hid.ToEVMAddress(req.TokenIn); err != nil {
		return swapPlan{}, err
	}
	if plan.hbarOut {
		plan.addrOut = net.WHBARAddress()
	} else if plan.addrOut, err = hid.ToEVMAddress(req.TokenOut); err != nil {
		return swapPlan{}, err
	}
	if plan.addrIn == plan.addrOut {
		return swapPlan{}, swaperr.New(swaperr.CodeUsage, "input and output tokens must differ")
	}

	plan.amountIn = req.Amount.ToBase(req.DecimalsIn)
	if plan.amountIn.Sign() <= 0 {
		return swapPlan{}, swaperr.New(swaperr.CodeUsage, "amount rounds to zero base units")
	}
	if plan.hbarIn {
		plan.nativeValue = req.Amount.ToBase(nativeValueDecimals).BigInt()
	}

	plan.deadline = req.Deadline
	if plan.deadline == 0 {
		plan.deadline = hid.DeadlineAt(e.now().Add(hid.DefaultDeadlineWindow))
	}
	if err := plan.deadline.Validate(e.now()); err != nil {
		return swapPlan{}, err
	}

	plan.path, err = hid.EncodePath([]common.Address{plan.addrIn, plan.addrOut}, []uint32{plan.fee})
	if err != nil {
		return swapPlan{}, err
	}
	return plan, nil
}

func isNative(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), registry.NativeSymbol)
}
