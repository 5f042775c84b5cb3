package hid

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestEncodePathSingleHop(t *testing.T) {
	tokenIn := common.HexToAddress("0x0000000000000000000000000000000000163b5a")
	tokenOut := common.HexToAddress("0x000000000000000000000000000000000006f89a")
	path, err := EncodePath([]common.Address{tokenIn, tokenOut}, []uint32{1500})
	if err != nil {
		t.Fatalf("EncodePath failed: %v", err)
	}
	if len(path) != 43 {
		t.Fatalf("expected 43 bytes, got %d", len(path))
	}
	if !bytes.Equal(path[:20], tokenIn.Bytes()) {
		t.Fatal("path does not start with tokenIn")
	}
	if fee := uint32(path[20])<<16 | uint32(path[21])<<8 | uint32(path[22]); fee != 1500 {
		t.Fatalf("expected fee 1500 in bytes 20..22, got %d", fee)
	}
	if !bytes.Equal(path[23:], tokenOut.Bytes()) {
		t.Fatal("path does not end with tokenOut")
	}
}

func TestPathRoundTripMultiHop(t *testing.T) {
	tokens := []common.Address{
		common.HexToAddress("0x0000000000000000000000000000000000163b5a"),
		common.HexToAddress("0x000000000000000000000000000000000006f89a"),
		common.HexToAddress("0x00000000000000000000000000000000000b2ad5"),
	}
	fees := []uint32{500, 3000}
	path, err := EncodePath(tokens, fees)
	if err != nil {
		t.Fatalf("EncodePath failed: %v", err)
	}
	gotTokens, gotFees, err := DecodePath(path)
	if err != nil {
		t.Fatalf("DecodePath failed: %v", err)
	}
	if len(gotTokens) != len(tokens) || len(gotFees) != len(fees) {
		t.Fatalf("round trip lost hops: %d tokens, %d fees", len(gotTokens), len(gotFees))
	}
	for i := range tokens {
		if gotTokens[i] != tokens[i] {
			t.Errorf("token %d mismatch: %s", i, gotTokens[i].Hex())
		}
	}
	for i := range fees {
		if gotFees[i] != fees[i] {
			t.Errorf("fee %d mismatch: %d", i, gotFees[i])
		}
	}
}

func TestEncodePathRejectsBadShapes(t *testing.T) {
	a := common.HexToAddress("0x0000000000000000000000000000000000163b5a")
	b := common.HexToAddress("0x000000000000000000000000000000000006f89a")
	if _, err := EncodePath([]common.Address{a}, nil); err == nil {
		t.Fatal("expected error for single-token path")
	}
	if _, err := EncodePath([]common.Address{a, b}, []uint32{500, 3000}); err == nil {
		t.Fatal("expected error for fee count mismatch")
	}
	if _, err := EncodePath([]common.Address{a, b}, []uint32{1 << 24}); err == nil {
		t.Fatal("expected error for oversized fee")
	}
}

func TestDecodePathRejectsTruncatedInput(t *testing.T) {
	if _, _, err := DecodePath(make([]byte, 42)); err == nil {
		t.Fatal("expected error for truncated path")
	}
}
