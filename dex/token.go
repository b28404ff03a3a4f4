package dex

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/michaelpento.lv/bestroute/types"
)

const erc20MetadataABI = `[
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"symbol","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"}
]`

// TokenReader resolves ERC-20 metadata over eth_call
type TokenReader struct {
	caller  ContractCaller
	chainID uint64
	abi     abi.ABI
}

func NewTokenReader(caller ContractCaller, chainID uint64) (*TokenReader, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20MetadataABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	return &TokenReader{caller: caller, chainID: chainID, abi: parsed}, nil
}

// Token reads decimals and symbol. A token without symbol() still resolves, showing its address.
func (r *TokenReader) Token(ctx context.Context, address common.Address) (*types.Token, error) {
	out, err := r.call(ctx, address, "decimals")
	if err != nil {
		return nil, fmt.Errorf("failed to read decimals of %s: %w", address.Hex(), err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return nil, fmt.Errorf("unexpected decimals type %T for %s", out[0], address.Hex())
	}

	var symbol string
	if out, err := r.call(ctx, address, "symbol"); err == nil {
		symbol, _ = out[0].(string)
	}

	return types.NewToken(r.chainID, address, decimals, symbol), nil
}

func (r *TokenReader) call(ctx context.Context, address common.Address, method string) ([]interface{}, error) {
	data, err := r.abi.Pack(method)
	if err != nil {
		return nil, err
	}
	result, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &address, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	out, err := r.abi.Unpack(method, result)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned nothing", method)
	}
	return out, nil
}
