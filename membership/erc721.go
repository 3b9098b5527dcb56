package membership

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"okinoko_vote/sdk"
)

const erc721ABI = `[
{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

// ContractCaller is the read-only slice of ethclient.Client the oracle needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ERC721 reads balances from an ERC-721 membership contract over JSON-RPC.
type ERC721 struct {
	caller   ContractCaller
	contract common.Address
	abi      abi.ABI
}

// NewERC721 wraps an existing caller. contract must be a 0x address.
func NewERC721(caller ContractCaller, contract string) (*ERC721, error) {
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("membership: invalid contract address %q", contract)
	}
	parsed, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		return nil, fmt.Errorf("membership: parse abi: %w", err)
	}
	return &ERC721{caller: caller, contract: common.HexToAddress(contract), abi: parsed}, nil
}

// DialERC721 connects to rpcURL. Close the returned client when done.
func DialERC721(ctx context.Context, rpcURL, contract string) (*ERC721, *ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("membership: dial %s: %w", rpcURL, err)
	}
	o, err := NewERC721(c, contract)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return o, c, nil
}

func (o *ERC721) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := o.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("membership: pack %s: %w", method, err)
	}
	to := o.contract
	out, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("membership: call %s: %w", method, err)
	}
	res, err := o.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("membership: unpack %s: %w", method, err)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("membership: %s returned %d values", method, len(res))
	}
	return res, nil
}

// BalanceOf reports 0 for addresses that cannot hold an ERC-721 token (hive:, did:key:, ...).
// Balances beyond uint64 are clamped since nobody holds that many membership tokens.
func (o *ERC721) BalanceOf(ctx context.Context, addr sdk.Address) (uint64, error) {
	holder, ok := addr.HexAddress()
	if !ok {
		return 0, nil
	}
	res, err := o.call(ctx, "balanceOf", holder)
	if err != nil {
		return 0, err
	}
	n, ok := res[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("membership: balanceOf returned %T", res[0])
	}
	if !n.IsUint64() {
		if n.Sign() < 0 {
			return 0, nil
		}
		return ^uint64(0), nil
	}
	return n.Uint64(), nil
}

func (o *ERC721) OwnerOf(ctx context.Context, tokenID uint64) (sdk.Address, error) {
	res, err := o.call(ctx, "ownerOf", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", err
	}
	owner, ok := res[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("membership: ownerOf returned %T", res[0])
	}
	if owner == (common.Address{}) {
		return "", fmt.Errorf("%w: %d", ErrNoOwner, tokenID)
	}
	return sdk.NewAddress(owner.Hex()), nil
}
