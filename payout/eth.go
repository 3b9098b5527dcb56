package payout

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"okinoko_vote/sdk"
)

// nativeTransferGas is the fixed cost of a plain value transfer.
const nativeTransferGas = 21000

// TxSender is the part of ethclient.Client used to submit a transfer.
type TxSender interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// EthConfig configures the signing treasury wallet.
type EthConfig struct {
	PrivateKeyHex string
	ChainID       int64
	// WeiPerUnit scales engine units to wei. 0 means 1 unit = 1 wei.
	WeiPerUnit *big.Int
}

// Eth pays proposal targets from a hot wallet with legacy EIP-155 transactions.
type Eth struct {
	client TxSender
	key    *ecdsa.PrivateKey
	from   common.Address
	signer types.Signer
	scale  *big.Int
	log    *slog.Logger

	mu      sync.Mutex
	lastTxs map[string]common.Hash
}

func NewEth(client TxSender, cfg EthConfig, log *slog.Logger) (*Eth, error) {
	key, err := crypto.HexToECDSA(trim0x(cfg.PrivateKeyHex))
	if err != nil {
		return nil, fmt.Errorf("payout: private key: %w", err)
	}
	if cfg.ChainID <= 0 {
		return nil, fmt.Errorf("payout: chain id must be positive")
	}
	scale := cfg.WeiPerUnit
	if scale == nil || scale.Sign() <= 0 {
		scale = big.NewInt(1)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Eth{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		signer:  types.NewEIP155Signer(big.NewInt(cfg.ChainID)),
		scale:   scale,
		log:     log,
		lastTxs: map[string]common.Hash{},
	}, nil
}

// DialEth connects to rpcURL and builds the payer. Close the returned client when done.
func DialEth(ctx context.Context, rpcURL string, cfg EthConfig, log *slog.Logger) (*Eth, *ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("payout: dial %s: %w", rpcURL, err)
	}
	p, err := NewEth(c, cfg, log)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return p, c, nil
}

// From is the treasury wallet address.
func (p *Eth) From() common.Address {
	return p.from
}

// TxHash returns the hash submitted for ref, if any.
func (p *Eth) TxHash(ref string) (common.Hash, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.lastTxs[ref]
	return h, ok
}

func (p *Eth) Pay(ctx context.Context, to sdk.Address, amount uint64, ref string) error {
	recipient, ok := to.HexAddress()
	if !ok {
		return fmt.Errorf("payout: %s is not an EVM address", to)
	}
	nonce, err := p.client.PendingNonceAt(ctx, p.from)
	if err != nil {
		return fmt.Errorf("payout: nonce: %w", err)
	}
	gasPrice, err := p.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("payout: gas price: %w", err)
	}
	value := new(big.Int).Mul(new(big.Int).SetUint64(amount), p.scale)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &recipient,
		Value:    value,
		Gas:      nativeTransferGas,
		GasPrice: gasPrice,
	})
	signed, err := types.SignTx(tx, p.signer, p.key)
	if err != nil {
		return fmt.Errorf("payout: sign: %w", err)
	}
	if err := p.client.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("payout: send: %w", err)
	}
	p.mu.Lock()
	p.lastTxs[ref] = signed.Hash()
	p.mu.Unlock()
	p.log.Info("Payout sent", "ref", ref, "to", recipient.Hex(), "wei", value.String(), "tx", signed.Hash().Hex())
	return nil
}

func trim0x(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
