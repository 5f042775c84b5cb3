package hid

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
)

// V3 swap paths are 20-byte token addresses interleaved with 3-byte
// big-endian fee tiers: token0 | fee0 | token1 | fee1 | token2 ...
const (
	pathAddrLen = common.AddressLength
	pathFeeLen  = 3
	pathHopLen  = pathAddrLen + pathFeeLen
)

// EncodePath packs tokens and per-hop fees into router path bytes.
// len(fees) must be len(tokens)-1.
func EncodePath(tokens []common.Address, fees []uint32) ([]byte, error) {
	if len(tokens) < 2 {
		return nil, swaperr.New(swaperr.CodeUsage, "path needs at least two tokens")
	}
	if len(fees) != len(tokens)-1 {
		return nil, swaperr.New(swaperr.CodeUsage,
			fmt.Sprintf("expected %d fees for %d tokens, got %d", len(tokens)-1, len(tokens), len(fees)))
	}
	out := make([]byte, 0, len(tokens)*pathAddrLen+len(fees)*pathFeeLen)
	for i, token := range tokens {
		out = append(out, token.Bytes()...)
		if i < len(fees) {
			fee := fees[i]
			if fee >= 1<<24 {
				return nil, swaperr.New(swaperr.CodeUsage, fmt.Sprintf("fee tier %d does not fit in 3 bytes", fee))
			}
			out = append(out, byte(fee>>16), byte(fee>>8), byte(fee))
		}
	}
	return out, nil
}

// DecodePath reverses EncodePath.
func DecodePath(path []byte) (tokens []common.Address, fees []uint32, err error) {
	if len(path) < pathHopLen+pathAddrLen || (len(path)-pathAddrLen)%pathHopLen != 0 {
		return nil, nil, swaperr.New(swaperr.CodeUsage, fmt.Sprintf("malformed path of %d bytes", len(path)))
	}
	tokens = append(tokens, common.BytesToAddress(path[:pathAddrLen]))
	for rest := path[pathAddrLen:]; len(rest) > 0; rest = rest[pathHopLen:] {
		fee := uint32(rest[0])<<16 | uint32(rest[1])<<8 | uint32(rest[2])
		fees = append(fees, fee)
		tokens = append(tokens, common.BytesToAddress(rest[pathFeeLen:pathHopLen]))
	}
	return tokens, fees, nil
}
