package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbarlabs/sswap/internal/hid"
)

// Token is one entry of the built-in token list. Users can extend the
// list per network; nothing here is mutated after init.
type Token struct {
	Symbol   string
	ID       hid.ID
	Decimals int
}

// NativeSymbol is the sentinel users pass for native HBAR on either side
// of a swap. It is not an HTS token; swaps route through WHBAR.
const NativeSymbol = "HBAR"

// HBARDecimals is the precision of WHBAR and of HBAR amounts as the
// router sees them. The JSON-RPC relay separately expresses native
// transaction value in 18-decimal wei.
const HBARDecimals = 8

// Fee tiers in hundredths of a basis point (1500 = 0.15%).
const (
	FeeLowest  uint32 = 100
	FeeLow     uint32 = 500
	FeeStable  uint32 = 1500
	FeeMedium  uint32 = 3000
	FeeHighest uint32 = 10000
)

// DefaultFee is the common tier for HBAR/stable pools.
const DefaultFee = FeeStable

var mainnetTokens = map[string]Token{
	"WHBAR": {Symbol: "WHBAR", ID: "0.0.1456986", Decimals: 8},
	"USDC":  {Symbol: "USDC", ID: "0.0.456858", Decimals: 6},
	"WBTC":  {Symbol: "WBTC", ID: "0.0.10082597", Decimals: 8},
	"SAUCE": {Symbol: "SAUCE", ID: "0.0.731861", Decimals: 6},
}

var testnetTokens = map[string]Token{
	"WHBAR": {Symbol: "WHBAR", ID: "0.0.15058", Decimals: 8},
	"USDC":  {Symbol: "USDC", ID: "0.0.429274", Decimals: 6},
}

// LookupToken resolves a symbol from the network's built-in list.
func (n Network) LookupToken(symbol string) (Token, bool) {
	token, ok := n.tokens[strings.ToUpper(strings.TrimSpace(symbol))]
	return token, ok
}

// Tokens returns the built-in list sorted by symbol.
func (n Network) Tokens() []Token {
	out := make([]Token, 0, len(n.tokens))
	for _, token := range n.tokens {
		out = append(out, token)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ResolveTokenID accepts a symbol from the list, a raw Hedera id, or the
// HBAR sentinel (returned unchanged for the engine to handle).
func (n Network) ResolveTokenID(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	if strings.EqualFold(clean, NativeSymbol) {
		return NativeSymbol, nil
	}
	if token, ok := n.LookupToken(clean); ok {
		return token.ID.String(), nil
	}
	if _, err := hid.ParseID(clean); err == nil {
		return clean, nil
	}
	return "", fmt.Errorf("unknown token %q on %s", raw, n.Name)
}
