// Package router is the low-level SaucerSwap V2 contract client. It packs
// and submits calls to the quoter and swap router through the Hedera
// JSON-RPC relay and maps failures onto the typed error codes.
package router

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/hid"
	"github.com/hbarlabs/sswap/internal/registry"
)

var (
	quoterABI = mustABI(registry.QuoterV2ABI)
	routerABI = mustABI(registry.SwapRouterABI)
	erc20ABI  = mustABI(registry.ERC20MinimalABI)
)

type Client struct {
	eth *ethclient.Client
	net registry.Network
}

func Dial(ctx context.Context, net registry.Network, rpcOverride string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, net.ResolveRPCURL(rpcOverride))
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CodeRPC, "connect hedera rpc", err)
	}
	return NewClient(eth, net), nil
}

func NewClient(eth *ethclient.Client, net registry.Network) *Client {
	return &Client{eth: eth, net: net}
}

func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

func (c *Client) Network() registry.Network { return c.net }

// QuoteExactInput runs the quoter's read-only quoteExactInput over the
// encoded path. A revert means no liquidity route exists for the pair
// and fee tier; that is distinguished from transport failures.
func (c *Client) QuoteExactInput(ctx context.Context, path []byte, amountIn hid.BaseAmount) (hid.BaseAmount, error) {
	callData, err := quoterABI.Pack("quoteExactInput", path, amountIn.BigInt())
	if err != nil {
		return hid.BaseAmount{}, swaperr.Wrap(swaperr.CodeInternal, "pack quoter calldata", err)
	}
	quoter := c.net.QuoterAddress()
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &quoter, Data: callData}, nil)
	if err != nil {
		return hid.BaseAmount{}, classifyCallError("quote", err)
	}
	decoded, err := quoterABI.Unpack("quoteExactInput", out)
	if err != nil || len(decoded) == 0 {
		return hid.BaseAmount{}, swaperr.Wrap(swaperr.CodeRPC, "decode quoter response", err)
	}
	amountOut, ok := decoded[0].(*big.Int)
	if !ok || amountOut == nil {
		return hid.BaseAmount{}, swaperr.New(swaperr.CodeRPC, "invalid quoter response")
	}
	return hid.NewBaseAmount(amountOut), nil
}

// QuoteExactOutput is not offered by this client. The deployed quoter
// exposes exact-output methods, but amount semantics on the wrapped
// native side are unverified, so the call is refused rather than
// guessed at.
func (c *Client) QuoteExactOutput(ctx context.Context, path []byte, amountOut hid.BaseAmount) (hid.BaseAmount, error) {
	return hid.BaseAmount{}, swaperr.New(swaperr.CodeUnsupported, "exact-output quoting is not supported")
}

// Allowance reads the router's ERC-20 spend allowance for owner.
func (c *Client) Allowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	callData, err := erc20ABI.Pack("allowance", owner, c.net.RouterAddress())
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CodeInternal, "pack allowance calldata", err)
	}
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{From: owner, To: &token, Data: callData}, nil)
	if err != nil {
		return nil, classifyCallError("read allowance", err)
	}
	return unpackBigInt(erc20ABI, "allowance", out)
}

// TokenBalance reads an HTS token balance. A revert on balanceOf means
// the account has not associated the token.
func (c *Client) TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	callData, err := erc20ABI.Pack("balanceOf", account)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CodeInternal, "pack balanceOf calldata", err)
	}
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &token, Data: callData}, nil)
	if err != nil {
		if isRevert(err) {
			return nil, swaperr.Wrap(swaperr.CodeNotAssoc, "token not associated with account", err)
		}
		return nil, classifyCallError("read token balance", err)
	}
	return unpackBigInt(erc20ABI, "balanceOf", out)
}

func (c *Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CodeRPC, "read native balance", err)
	}
	return balance, nil
}

func unpackBigInt(parsed abi.ABI, method string, out []byte) (*big.Int, error) {
	values, err := parsed.Unpack(method, out)
	if err != nil || len(values) == 0 {
		return nil, swaperr.Wrap(swaperr.CodeRPC, "decode "+method+" response", err)
	}
	value, ok := values[0].(*big.Int)
	if !ok || value == nil {
		return nil, swaperr.New(swaperr.CodeRPC, "invalid "+method+" response")
	}
	return value, nil
}

func classifyCallError(op string, err error) error {
	if isRevert(err) {
		msg := op + " reverted"
		if reason := revertReason(err); reason != "" {
			msg += ": " + reason
		}
		return swaperr.Wrap(swaperr.CodeRevert, msg, err)
	}
	return swaperr.Wrap(swaperr.CodeRPC, op+" failed", err)
}

func isRevert(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
