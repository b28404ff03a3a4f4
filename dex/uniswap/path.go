package uniswap

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/michaelpento.lv/bestroute/types"
)

const (
	addrSize = common.AddressLength
	feeSize  = 3
	hopSize  = addrSize + feeSize

	// MaxFee is the largest value a uint24 fee tier can hold
	MaxFee = 1<<24 - 1
)

var ErrMalformedPath = errors.New("malformed path")

// EncodePath serializes a route as token(20) | fee(3) | token(20) | ...
// Exact output paths are written from the output token back to the input token,
// because the quoter walks the swap backwards from the desired amount.
func EncodePath(route *types.Route, exactOutput bool) []byte {
	tokens := route.Path()
	fees := make([]uint32, len(route.Pools))
	for i, pool := range route.Pools {
		fees[i] = pool.Fee
	}

	if exactOutput {
		for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
			tokens[i], tokens[j] = tokens[j], tokens[i]
		}
		for i, j := 0, len(fees)-1; i < j; i, j = i+1, j-1 {
			fees[i], fees[j] = fees[j], fees[i]
		}
	}

	out := make([]byte, 0, len(fees)*hopSize+addrSize)
	for i, fee := range fees {
		out = append(out, tokens[i].Address.Bytes()...)
		out = append(out, byte(fee>>16), byte(fee>>8), byte(fee))
	}
	return append(out, tokens[len(tokens)-1].Address.Bytes()...)
}

// DecodePath splits an encoded path back into its token and fee sequence
func DecodePath(path []byte) ([]common.Address, []uint32, error) {
	if len(path) < hopSize+addrSize || (len(path)-addrSize)%hopSize != 0 {
		return nil, nil, fmt.Errorf("%w: length %d", ErrMalformedPath, len(path))
	}

	hops := (len(path) - addrSize) / hopSize
	tokens := make([]common.Address, 0, hops+1)
	fees := make([]uint32, 0, hops)
	for i := 0; i < hops; i++ {
		offset := i * hopSize
		tokens = append(tokens, common.BytesToAddress(path[offset:offset+addrSize]))
		f := path[offset+addrSize : offset+hopSize]
		fees = append(fees, uint32(f[0])<<16|uint32(f[1])<<8|uint32(f[2]))
	}
	tokens = append(tokens, common.BytesToAddress(path[hops*hopSize:]))
	return tokens, fees, nil
}
