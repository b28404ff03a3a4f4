package uniswap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/types"
)

// Contract addresses
var (
	MainnetQuoterV1 = common.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6")
	MainnetQuoterV2 = common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	MainnetFactory  = common.HexToAddress("0x1F98431c8aD98523631AE339eF374aB55BA0a4a5")
)

var ErrEmptyResult = errors.New("quoter returned no data")

const quoterV2ABIJson = `[{
	"inputs": [
		{"name": "path", "type": "bytes"},
		{"name": "amountIn", "type": "uint256"}
	],
	"name": "quoteExactInput",
	"outputs": [
		{"name": "amountOut", "type": "uint256"},
		{"name": "sqrtPriceX96AfterList", "type": "uint160[]"},
		{"name": "initializedTicksCrossedList", "type": "uint32[]"},
		{"name": "gasEstimate", "type": "uint256"}
	],
	"stateMutability": "nonpayable",
	"type": "function"
}, {
	"inputs": [
		{"name": "path", "type": "bytes"},
		{"name": "amountOut", "type": "uint256"}
	],
	"name": "quoteExactOutput",
	"outputs": [
		{"name": "amountIn", "type": "uint256"},
		{"name": "sqrtPriceX96AfterList", "type": "uint160[]"},
		{"name": "initializedTicksCrossedList", "type": "uint32[]"},
		{"name": "gasEstimate", "type": "uint256"}
	],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

const quoterV1ABIJson = `[{
	"inputs": [
		{"name": "path", "type": "bytes"},
		{"name": "amountIn", "type": "uint256"}
	],
	"name": "quoteExactInput",
	"outputs": [{"name": "amountOut", "type": "uint256"}],
	"stateMutability": "nonpayable",
	"type": "function"
}, {
	"inputs": [
		{"name": "path", "type": "bytes"},
		{"name": "amountOut", "type": "uint256"}
	],
	"name": "quoteExactOutput",
	"outputs": [{"name": "amountIn", "type": "uint256"}],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

// Quoter prices encoded paths by simulating them against an on-chain quoter contract
type Quoter struct {
	caller  dex.ContractCaller
	address common.Address
	version int
	abi     abi.ABI
}

// NewQuoter binds a quoter contract. Version 1 quoters report no gas estimate.
func NewQuoter(caller dex.ContractCaller, address common.Address, version int) (*Quoter, error) {
	var abiJSON string
	switch version {
	case 1:
		abiJSON = quoterV1ABIJson
	case 2:
		abiJSON = quoterV2ABIJson
	default:
		return nil, fmt.Errorf("unsupported quoter version %d", version)
	}

	parsedABI, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	return &Quoter{
		caller:  caller,
		address: address,
		version: version,
		abi:     parsedABI,
	}, nil
}

// Address returns the quoter contract address
func (q *Quoter) Address() common.Address {
	return q.address
}

// Quote simulates one path. Reverts surface as errors for the caller to absorb.
func (q *Quoter) Quote(ctx context.Context, req dex.QuoteRequest) (*dex.QuoteResponse, error) {
	method := methodFor(req.TradeType)
	input, err := q.abi.Pack(method, req.Path, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	var blockNumber *big.Int
	if req.BlockNumber > 0 {
		blockNumber = new(big.Int).SetUint64(req.BlockNumber)
	}

	output, err := q.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &q.address,
		Gas:  req.GasLimit,
		Data: input,
	}, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	if len(output) == 0 {
		return nil, ErrEmptyResult
	}

	values, err := q.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}

	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to parse %s amount", method)
	}

	resp := &dex.QuoteResponse{Amount: amount}
	if q.version == 2 {
		gasEstimate, ok := values[3].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("failed to parse %s gas estimate", method)
		}
		resp.GasEstimate = gasEstimate.Uint64()
	}
	return resp, nil
}

func methodFor(tradeType types.TradeType) string {
	if tradeType == types.ExactOutput {
		return "quoteExactOutput"
	}
	return "quoteExactInput"
}
