// Package hid holds Hedera identifier and unit types shared across the
// client: entity ids, base-unit vs decimal amounts, millisecond deadlines,
// and V3 swap path encoding.
package hid

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
)

var (
	entityIDPattern   = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)
	evmAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// ID is a Hedera entity id in shard.realm.num form, e.g. "0.0.456858".
type ID string

func ParseID(raw string) (ID, error) {
	clean := strings.TrimSpace(raw)
	if !entityIDPattern.MatchString(clean) {
		return "", swaperr.New(swaperr.CodeUsage, fmt.Sprintf("invalid hedera id %q (expected shard.realm.num)", raw))
	}
	return ID(clean), nil
}

func (id ID) String() string { return string(id) }

// Num returns the entity number, the only component encoded into the
// long-zero EVM address form.
func (id ID) Num() (int64, error) {
	parts := strings.Split(string(id), ".")
	if len(parts) != 3 {
		return 0, swaperr.New(swaperr.CodeUsage, fmt.Sprintf("invalid hedera id %q", string(id)))
	}
	num, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, swaperr.Wrap(swaperr.CodeUsage, fmt.Sprintf("invalid hedera id %q", string(id)), err)
	}
	return num, nil
}

// EVMAddress converts the id to its long-zero EVM address
// (0.0.123 -> 0x000...007B).
func (id ID) EVMAddress() (common.Address, error) {
	num, err := id.Num()
	if err != nil {
		return common.Address{}, err
	}
	return common.BigToAddress(big.NewInt(num)), nil
}

// ToEVMAddress accepts either a Hedera id or a 0x address and returns the
// EVM address the contract ABI expects.
func ToEVMAddress(raw string) (common.Address, error) {
	clean := strings.TrimSpace(raw)
	if evmAddressPattern.MatchString(clean) {
		return common.HexToAddress(clean), nil
	}
	id, err := ParseID(clean)
	if err != nil {
		return common.Address{}, err
	}
	return id.EVMAddress()
}
