package router

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/hid"
	"github.com/hbarlabs/sswap/internal/registry"
)

func offlineClient() *Client {
	return NewClient(&ethclient.Client{}, registry.Mainnet())
}

func TestBuildExactInputDirectSwap(t *testing.T) {
	net := registry.Mainnet()
	c := offlineClient()
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	path, err := hid.EncodePath([]common.Address{mustEVMAddr(t, "0.0.456858"), net.WHBARAddress()}, []uint32{1500})
	if err != nil {
		t.Fatalf("encode path: %v", err)
	}
	deadline := hid.DeadlineMillis(1_750_000_000_000)

	call, err := c.BuildExactInput(ExactInputParams{
		Path:      path,
		Deadline:  deadline,
		AmountIn:  hid.NewBaseAmount(big.NewInt(1_000_000)),
		MinOut:    hid.NewBaseAmount(big.NewInt(980_000)),
		Recipient: recipient,
	})
	if err != nil {
		t.Fatalf("BuildExactInput failed: %v", err)
	}
	if call.To != net.RouterAddress() {
		t.Fatalf("expected call to router, got %s", call.To.Hex())
	}
	if call.IsMulticall() {
		t.Fatal("direct swap must not be a multicall")
	}
	if call.Value.Sign() != 0 {
		t.Fatalf("expected zero native value, got %s", call.Value)
	}

	expected, err := routerABI.Pack("exactInput", exactInputTuple{
		Path:             path,
		Recipient:        recipient,
		Deadline:         big.NewInt(deadline.Int64()),
		AmountIn:         big.NewInt(1_000_000),
		AmountOutMinimum: big.NewInt(980_000),
	})
	if err != nil {
		t.Fatalf("pack expected calldata: %v", err)
	}
	if !bytes.Equal(call.Data, expected) {
		t.Fatal("calldata does not match packed exactInput")
	}
}

func TestBuildExactInputUnwrapIsAtomicMulticall(t *testing.T) {
	net := registry.Mainnet()
	c := offlineClient()
	caller := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	path, err := hid.EncodePath([]common.Address{mustEVMAddr(t, "0.0.456858"), net.WHBARAddress()}, []uint32{1500})
	if err != nil {
		t.Fatalf("encode path: %v", err)
	}
	deadline := hid.DeadlineMillis(1_750_000_000_000)
	minOut := hid.NewBaseAmount(big.NewInt(980_000))

	call, err := c.BuildExactInput(ExactInputParams{
		Path:            path,
		Deadline:        deadline,
		AmountIn:        hid.NewBaseAmount(big.NewInt(1_000_000)),
		MinOut:          minOut,
		Recipient:       caller,
		UnwrapRecipient: &caller,
	})
	if err != nil {
		t.Fatalf("BuildExactInput failed: %v", err)
	}
	if !call.IsMulticall() {
		t.Fatal("unwrap swap must batch through multicall")
	}

	// The swap leg must pay the router so unwrapWHBAR can release native
	// HBAR to the caller afterwards.
	swapData, err := routerABI.Pack("exactInput", exactInputTuple{
		Path:             path,
		Recipient:        net.RouterAddress(),
		Deadline:         big.NewInt(deadline.Int64()),
		AmountIn:         big.NewInt(1_000_000),
		AmountOutMinimum: minOut.BigInt(),
	})
	if err != nil {
		t.Fatalf("pack swap leg: %v", err)
	}
	unwrapData, err := routerABI.Pack("unwrapWHBAR", minOut.BigInt(), caller)
	if err != nil {
		t.Fatalf("pack unwrap leg: %v", err)
	}
	expected, err := routerABI.Pack("multicall", [][]byte{swapData, unwrapData})
	if err != nil {
		t.Fatalf("pack multicall: %v", err)
	}
	if !bytes.Equal(call.Data, expected) {
		t.Fatal("calldata does not match packed multicall")
	}
}

func TestBuildExactInputAttachesNativeValue(t *testing.T) {
	net := registry.Mainnet()
	c := offlineClient()
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	path, err := hid.EncodePath([]common.Address{net.WHBARAddress(), mustEVMAddr(t, "0.0.456858")}, []uint32{1500})
	if err != nil {
		t.Fatalf("encode path: %v", err)
	}
	value := new(big.Int).Exp(big.NewInt(10), big.NewInt(19), nil)

	call, err := c.BuildExactInput(ExactInputParams{
		Path:        path,
		Deadline:    hid.DeadlineMillis(1_750_000_000_000),
		AmountIn:    hid.NewBaseAmount(big.NewInt(1_000_000_000)),
		MinOut:      hid.NewBaseAmount(big.NewInt(1)),
		Recipient:   recipient,
		NativeValue: value,
	})
	if err != nil {
		t.Fatalf("BuildExactInput failed: %v", err)
	}
	if call.Value.Cmp(value) != 0 {
		t.Fatalf("expected native value %s, got %s", value, call.Value)
	}
}

func TestBuildExactInputValidation(t *testing.T) {
	c := offlineClient()
	if _, err := c.BuildExactInput(ExactInputParams{
		AmountIn: hid.NewBaseAmount(big.NewInt(1)),
	}); !swaperr.Is(err, swaperr.CodeUsage) {
		t.Fatalf("expected usage error for missing path, got %v", err)
	}
	path, _ := hid.EncodePath([]common.Address{
		mustEVMAddr(t, "0.0.456858"),
		registry.Mainnet().WHBARAddress(),
	}, []uint32{1500})
	if _, err := c.BuildExactInput(ExactInputParams{Path: path}); !swaperr.Is(err, swaperr.CodeUsage) {
		t.Fatalf("expected usage error for zero amount, got %v", err)
	}
}

func TestBuildApproveGrantsRouter(t *testing.T) {
	net := registry.Mainnet()
	c := offlineClient()
	token := mustEVMAddr(t, "0.0.456858")
	amount := hid.NewBaseAmount(big.NewInt(5_000_000))

	call, err := c.BuildApprove(token, amount)
	if err != nil {
		t.Fatalf("BuildApprove failed: %v", err)
	}
	if call.To != token {
		t.Fatalf("approve must target the token, got %s", call.To.Hex())
	}
	expected, err := erc20ABI.Pack("approve", net.RouterAddress(), amount.BigInt())
	if err != nil {
		t.Fatalf("pack expected approve: %v", err)
	}
	if !bytes.Equal(call.Data, expected) {
		t.Fatal("calldata does not match packed approve")
	}
}
