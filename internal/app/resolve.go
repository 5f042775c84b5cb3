package app

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/hid"
	"github.com/hbarlabs/sswap/internal/mirror"
	"github.com/hbarlabs/sswap/internal/registry"
	"github.com/hbarlabs/sswap/internal/signer"
)

// resolvedToken is a token reference normalized for the engine: the HBAR
// sentinel or a Hedera id, plus decimals.
type resolvedToken struct {
	id       string
	symbol   string
	decimals int
}

// resolveToken accepts a registry symbol, a raw Hedera id, or the HBAR
// sentinel. Unknown ids fall back to a mirror-node lookup; explicit
// decimals (>= 0) short-circuit that.
func (s *runtimeState) resolveToken(ctx context.Context, raw string, decimalsOverride int) (resolvedToken, error) {
	clean := strings.TrimSpace(raw)
	if strings.EqualFold(clean, registry.NativeSymbol) {
		return resolvedToken{id: registry.NativeSymbol, symbol: registry.NativeSymbol, decimals: registry.HBARDecimals}, nil
	}
	if token, ok := s.net.LookupToken(clean); ok {
		decimals := token.Decimals
		if decimalsOverride >= 0 {
			decimals = decimalsOverride
		}
		return resolvedToken{id: token.ID.String(), symbol: token.Symbol, decimals: decimals}, nil
	}
	id, err := hid.ParseID(clean)
	if err != nil {
		return resolvedToken{}, swaperr.New(swaperr.CodeUsage,
			"token must be a known symbol, a Hedera id, or HBAR: "+raw)
	}
	if decimalsOverride >= 0 {
		return resolvedToken{id: id.String(), symbol: id.String(), decimals: decimalsOverride}, nil
	}
	info, err := mirror.New(s.net.MirrorURL, 10*time.Second, 2).TokenInfo(ctx, id)
	if err != nil {
		return resolvedToken{}, swaperr.Wrap(swaperr.CodeUsage,
			"unknown token "+raw+" (pass --decimals-in/--decimals-out to skip the mirror lookup)", err)
	}
	return resolvedToken{id: id.String(), symbol: info.Symbol, decimals: info.Decimals}, nil
}

// resolveSwapArgs resolves both sides of a pair and parses the amount,
// filling in decimals flags that were left at their -1 default.
func (s *runtimeState) resolveSwapArgs(ctx context.Context, inArg, outArg, amountArg string, decimalsIn, decimalsOut *int) (resolvedToken, resolvedToken, hid.DecimalAmount, error) {
	tokenIn, err := s.resolveToken(ctx, inArg, *decimalsIn)
	if err != nil {
		return resolvedToken{}, resolvedToken{}, hid.DecimalAmount{}, err
	}
	tokenOut, err := s.resolveToken(ctx, outArg, *decimalsOut)
	if err != nil {
		return resolvedToken{}, resolvedToken{}, hid.DecimalAmount{}, err
	}
	amount, err := hid.ParseDecimalAmount(amountArg)
	if err != nil {
		return resolvedToken{}, resolvedToken{}, hid.DecimalAmount{}, err
	}
	*decimalsIn = tokenIn.decimals
	*decimalsOut = tokenOut.decimals
	return tokenIn, tokenOut, amount, nil
}

func (s *runtimeState) resolveAccount(raw string) (common.Address, error) {
	clean := strings.TrimSpace(raw)
	if clean != "" {
		return hid.ToEVMAddress(clean)
	}
	txSigner, err := signer.NewLocalSignerFromEnv()
	if err != nil {
		return common.Address{}, swaperr.Wrap(swaperr.CodeSigner,
			"no --account given and no signing key configured", err)
	}
	return txSigner.Address(), nil
}
