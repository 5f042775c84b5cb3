package hid

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
)

// BaseAmount is an integer amount in a token's smallest unit, the only
// representation the contract ABI accepts. Keeping it distinct from
// DecimalAmount makes a missed decimals conversion a type error.
type BaseAmount struct {
	v *big.Int
}

func NewBaseAmount(v *big.Int) BaseAmount {
	if v == nil {
		return BaseAmount{v: new(big.Int)}
	}
	return BaseAmount{v: new(big.Int).Set(v)}
}

func ParseBaseAmount(raw string) (BaseAmount, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return BaseAmount{}, swaperr.New(swaperr.CodeUsage, fmt.Sprintf("invalid base-unit amount %q", raw))
	}
	return BaseAmount{v: v}, nil
}

func (a BaseAmount) BigInt() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.v)
}

func (a BaseAmount) Sign() int {
	if a.v == nil {
		return 0
	}
	return a.v.Sign()
}

func (a BaseAmount) String() string { return a.BigInt().String() }

func (a BaseAmount) Cmp(b BaseAmount) int { return a.BigInt().Cmp(b.BigInt()) }

// ToDecimal converts base units to a human-readable amount using the
// token's decimals.
func (a BaseAmount) ToDecimal(decimals int) DecimalAmount {
	return DecimalAmount{d: decimal.NewFromBigInt(a.BigInt(), -int32(decimals))}
}

// DecimalAmount is a human-readable token amount, e.g. "1.5" USDC.
type DecimalAmount struct {
	d decimal.Decimal
}

func NewDecimalAmount(d decimal.Decimal) DecimalAmount { return DecimalAmount{d: d} }

func DecimalAmountFromFloat(v float64) DecimalAmount {
	return DecimalAmount{d: decimal.NewFromFloat(v)}
}

func ParseDecimalAmount(raw string) (DecimalAmount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return DecimalAmount{}, swaperr.Wrap(swaperr.CodeUsage, fmt.Sprintf("invalid amount %q", raw), err)
	}
	return DecimalAmount{d: d}, nil
}

// ToBase converts to base units for the given decimals, rounding down.
func (a DecimalAmount) ToBase(decimals int) BaseAmount {
	scaled := a.d.Shift(int32(decimals)).Floor()
	return BaseAmount{v: scaled.BigInt()}
}

func (a DecimalAmount) Decimal() decimal.Decimal { return a.d }

func (a DecimalAmount) IsPositive() bool { return a.d.IsPositive() }

func (a DecimalAmount) String() string { return a.d.String() }
