package router

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/hid"
)

// Call is an encoded contract call ready for submission.
type Call struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

type exactInputTuple struct {
	Path             []byte         `abi:"path"`
	Recipient        common.Address `abi:"recipient"`
	Deadline         *big.Int       `abi:"deadline"`
	AmountIn         *big.Int       `abi:"amountIn"`
	AmountOutMinimum *big.Int       `abi:"amountOutMinimum"`
}

// ExactInputParams describes one exact-input swap against the router.
type ExactInputParams struct {
	Path     []byte
	Deadline hid.DeadlineMillis
	AmountIn hid.BaseAmount
	MinOut   hid.BaseAmount

	// Recipient receives the swap output (the caller's account, or the
	// router itself when the output is unwrapped afterwards).
	Recipient common.Address

	// NativeValue, when non-nil, is attached as transaction value so the
	// router wraps native HBAR into WHBAR for the swap input.
	NativeValue *big.Int

	// UnwrapRecipient, when non-nil, turns the call into an atomic
	// multicall of exactInput followed by unwrapWHBAR paying native HBAR
	// out to this address. The whole batch succeeds or reverts together.
	UnwrapRecipient *common.Address
}

// BuildExactInput encodes the swap calldata, composing the wrap/unwrap
// multicall when native HBAR is involved on the output side.
func (c *Client) BuildExactInput(p ExactInputParams) (Call, error) {
	if len(p.Path) == 0 {
		return Call{}, swaperr.New(swaperr.CodeUsage, "missing swap path")
	}
	if p.AmountIn.Sign() <= 0 {
		return Call{}, swaperr.New(swaperr.CodeUsage, "swap amount must be positive")
	}

	recipient := p.Recipient
	if p.UnwrapRecipient != nil {
		// Swap output stays with the router so unwrapWHBAR can pay it out.
		recipient = c.net.RouterAddress()
	}
	swapData, err := routerABI.Pack("exactInput", exactInputTuple{
		Path:             p.Path,
		Recipient:        recipient,
		Deadline:         big.NewInt(p.Deadline.Int64()),
		AmountIn:         p.AmountIn.BigInt(),
		AmountOutMinimum: p.MinOut.BigInt(),
	})
	if err != nil {
		return Call{}, swaperr.Wrap(swaperr.CodeInternal, "pack exactInput calldata", err)
	}

	value := big.NewInt(0)
	if p.NativeValue != nil {
		value = new(big.Int).Set(p.NativeValue)
	}

	if p.UnwrapRecipient == nil {
		return Call{To: c.net.RouterAddress(), Data: swapData, Value: value}, nil
	}

	unwrapData, err := routerABI.Pack("unwrapWHBAR", p.MinOut.BigInt(), *p.UnwrapRecipient)
	if err != nil {
		return Call{}, swaperr.Wrap(swaperr.CodeInternal, "pack unwrapWHBAR calldata", err)
	}
	batch, err := routerABI.Pack("multicall", [][]byte{swapData, unwrapData})
	if err != nil {
		return Call{}, swaperr.Wrap(swaperr.CodeInternal, "pack multicall calldata", err)
	}
	return Call{To: c.net.RouterAddress(), Data: batch, Value: value}, nil
}

// BuildApprove encodes an ERC-20 approval granting the router spend
// rights over the input token.
func (c *Client) BuildApprove(token common.Address, amount hid.BaseAmount) (Call, error) {
	data, err := erc20ABI.Pack("approve", c.net.RouterAddress(), amount.BigInt())
	if err != nil {
		return Call{}, swaperr.Wrap(swaperr.CodeInternal, "pack approve calldata", err)
	}
	return Call{To: token, Data: data, Value: big.NewInt(0)}, nil
}

// IsMulticall reports whether the call batches multiple router calls.
func (c Call) IsMulticall() bool {
	selector, err := routerABI.MethodById(c.Data)
	return err == nil && selector.Name == "multicall"
}
