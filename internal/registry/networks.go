// Package registry holds the canonical SaucerSwap V2 contract tables, the
// built-in token list, and the ABI fragments the client packs calls with.
package registry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hbarlabs/sswap/internal/hid"
)

// Network is the per-environment configuration object passed to clients.
// There is no process-global mutable table; callers pick a network once
// and hand it to the router client and engine.
type Network struct {
	Name      string
	ChainID   int64
	RPCURL    string
	MirrorURL string
	QuoterID  hid.ID
	RouterID  hid.ID
	WHBARID   hid.ID
	tokens    map[string]Token
}

var mainnet = Network{
	Name:      "mainnet",
	ChainID:   295,
	RPCURL:    "https://mainnet.hashio.io/api",
	MirrorURL: "https://mainnet-public.mirrornode.hedera.com",
	QuoterID:  "0.0.3949424",
	RouterID:  "0.0.3949434",
	WHBARID:   "0.0.1456986",
	tokens:    mainnetTokens,
}

var testnet = Network{
	Name:      "testnet",
	ChainID:   296,
	RPCURL:    "https://testnet.hashio.io/api",
	MirrorURL: "https://testnet.mirrornode.hedera.com",
	QuoterID:  "0.0.1390002",
	RouterID:  "0.0.1414040",
	WHBARID:   "0.0.15058",
	tokens:    testnetTokens,
}

func Mainnet() Network { return mainnet }
func Testnet() Network { return testnet }

func ByName(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mainnet":
		return mainnet, nil
	case "testnet":
		return testnet, nil
	default:
		return Network{}, fmt.Errorf("unknown network %q (expected mainnet|testnet)", name)
	}
}

func (n Network) QuoterAddress() common.Address { return mustEVM(n.QuoterID) }
func (n Network) RouterAddress() common.Address { return mustEVM(n.RouterID) }
func (n Network) WHBARAddress() common.Address  { return mustEVM(n.WHBARID) }

// ResolveRPCURL prefers the override when set, falling back to the
// network default.
func (n Network) ResolveRPCURL(override string) string {
	if clean := strings.TrimSpace(override); clean != "" {
		return clean
	}
	return n.RPCURL
}

func mustEVM(id hid.ID) common.Address {
	addr, err := id.EVMAddress()
	if err != nil {
		panic(err)
	}
	return addr
}
