package router

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/signer"
)

type SubmitOptions struct {
	Simulate       bool
	GasMultiplier  float64
	PollInterval   time.Duration
	ReceiptTimeout time.Duration
}

func DefaultSubmitOptions() SubmitOptions {
	return SubmitOptions{
		Simulate:       true,
		GasMultiplier:  1.2,
		PollInterval:   2 * time.Second,
		ReceiptTimeout: 2 * time.Minute,
	}
}

// Receipt is the confirmed result of a submitted call.
type Receipt struct {
	TxHash  common.Hash
	GasUsed uint64
}

// Submit signs and broadcasts the call, then polls until the transaction
// is mined. A mined-but-reverted transaction returns a revert error that
// still carries the transaction hash in Receipt.
func (c *Client) Submit(ctx context.Context, txSigner signer.Signer, call Call, opts SubmitOptions) (Receipt, error) {
	if txSigner == nil {
		return Receipt{}, swaperr.New(swaperr.CodeSigner, "missing signer")
	}
	if opts.GasMultiplier <= 1 {
		opts.GasMultiplier = 1.2
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.ReceiptTimeout <= 0 {
		opts.ReceiptTimeout = 2 * time.Minute
	}

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return Receipt{}, swaperr.Wrap(swaperr.CodeRPC, "read chain id", err)
	}
	if chainID.Int64() != c.net.ChainID {
		return Receipt{}, swaperr.New(swaperr.CodeUsage,
			"rpc chain id does not match configured network")
	}

	from := txSigner.Address()
	msg := ethereum.CallMsg{From: from, To: &call.To, Value: call.Value, Data: call.Data}

	if opts.Simulate {
		if _, err := c.eth.CallContract(ctx, msg, nil); err != nil {
			return Receipt{}, classifyCallError("simulate transaction", err)
		}
	}

	gasLimit, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		return Receipt{}, classifyCallError("estimate gas", err)
	}
	gasLimit = uint64(float64(gasLimit) * opts.GasMultiplier)

	tipCap, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		tipCap = big.NewInt(2_000_000_000)
	}
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return Receipt{}, swaperr.Wrap(swaperr.CodeRPC, "fetch latest header", err)
	}
	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(1_000_000_000)
	}
	feeCap := new(big.Int).Mul(baseFee, big.NewInt(2))
	feeCap.Add(feeCap, tipCap)

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return Receipt{}, swaperr.Wrap(swaperr.CodeRPC, "fetch nonce", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &call.To,
		Value:     call.Value,
		Data:      call.Data,
	})
	signed, err := txSigner.SignTx(chainID, tx)
	if err != nil {
		return Receipt{}, swaperr.Wrap(swaperr.CodeSigner, "sign transaction", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return Receipt{}, swaperr.Wrap(swaperr.CodeRPC, "broadcast transaction", err)
	}
	txHash := signed.Hash()

	waitCtx, cancel := context.WithTimeout(ctx, opts.ReceiptTimeout)
	defer cancel()
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.eth.TransactionReceipt(waitCtx, txHash)
		if err == nil && receipt != nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				return Receipt{TxHash: txHash, GasUsed: receipt.GasUsed}, nil
			}
			return Receipt{TxHash: txHash, GasUsed: receipt.GasUsed},
				swaperr.New(swaperr.CodeRevert, "transaction reverted on-chain")
		}
		// Not mined yet, or a transient poll failure; retry until timeout.
		select {
		case <-waitCtx.Done():
			return Receipt{TxHash: txHash}, swaperr.Wrap(swaperr.CodeRPC, "timed out waiting for receipt", waitCtx.Err())
		case <-ticker.C:
		}
	}
}

// revertReason extracts a readable reason from an RPC error carrying
// Error(string) revert data (selector 0x08c379a0).
func revertReason(err error) string {
	var dataErr interface{ ErrorData() interface{} }
	if !errors.As(err, &dataErr) {
		return ""
	}
	raw, ok := dataErr.ErrorData().(string)
	if !ok {
		return ""
	}
	buf := common.FromHex(raw)
	if len(buf) < 4 {
		return ""
	}
	selector, payload := buf[:4], buf[4:]
	if common.Bytes2Hex(selector) != "08c379a0" {
		return "custom error 0x" + common.Bytes2Hex(selector)
	}
	stringTy, tyErr := abi.NewType("string", "", nil)
	if tyErr != nil {
		return ""
	}
	values, unpackErr := abi.Arguments{{Type: stringTy}}.Unpack(payload)
	if unpackErr != nil || len(values) == 0 {
		return ""
	}
	reason, _ := values[0].(string)
	return reason
}
