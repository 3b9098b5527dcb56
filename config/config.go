// Package config loads the YAML configuration of an okinoko_vote node.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"okinoko_vote/contract"
	"okinoko_vote/sdk"
)

// Backend kinds.
const (
	MembershipStatic = "static"
	MembershipERC721 = "erc721"

	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	PayoutLedger = "ledger"
	PayoutEth    = "eth"
)

// Config represents the complete node configuration
type Config struct {
	// Admins seeds the admin set. At least one is required.
	Admins []string `yaml:"admins"`
	// NFTAddress is the membership token contract. Required for the erc721 oracle.
	NFTAddress string `yaml:"nft_address"`
	// QueueDelay is the minimum wait between queueing and executing a proposal.
	QueueDelay time.Duration `yaml:"queue_delay"`

	Membership MembershipConfig `yaml:"membership"`
	Store      StoreConfig      `yaml:"store"`
	Payout     PayoutConfig     `yaml:"payout"`
	Events     EventsConfig     `yaml:"events"`
	HTTP       HTTPConfig       `yaml:"http"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// MembershipConfig selects the token oracle
type MembershipConfig struct {
	Kind string `yaml:"kind"`
	// RPCURL is the JSON-RPC endpoint for the erc721 oracle
	RPCURL string `yaml:"rpc_url"`
	// Balances seeds the static oracle with plain token counts
	Balances map[string]uint64 `yaml:"balances"`
	// Owners seeds the static oracle with token id -> owner
	Owners map[uint64]string `yaml:"owners"`
}

// StoreConfig selects the state backend
type StoreConfig struct {
	Kind     string `yaml:"kind"`
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// PayoutConfig selects how executed proposals are paid
type PayoutConfig struct {
	Kind   string `yaml:"kind"`
	RPCURL string `yaml:"rpc_url"`
	// PrivateKey is the hex treasury key. PrivateKeyEnv names an env var holding it instead.
	PrivateKey    string `yaml:"private_key"`
	PrivateKeyEnv string `yaml:"private_key_env"`
	ChainID       int64  `yaml:"chain_id"`
	// WeiPerUnit is a decimal integer, empty means 1
	WeiPerUnit string `yaml:"wei_per_unit"`
}

// EventsConfig configures event fan-out
type EventsConfig struct {
	// NATSURL enables the NATS sink when set
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	// LogLimit bounds the in-memory log served at /events
	LogLimit int `yaml:"log_limit"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Listen string `yaml:"listen"`
	// TrustTimestampHeader lets clients set the call time with X-Timestamp. Only for tests and replays.
	TrustTimestampHeader bool `yaml:"trust_timestamp_header"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Membership: MembershipConfig{Kind: MembershipStatic},
		Store:      StoreConfig{Kind: StoreMemory, Prefix: "okinoko:"},
		Payout:     PayoutConfig{Kind: PayoutLedger},
		Events:     EventsConfig{SubjectPrefix: "okinoko.vote", LogLimit: 1000},
		HTTP:       HTTPConfig{Listen: "127.0.0.1:8080"},
		LogLevel:   "info",
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected so typos surface early.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse: %v", contract.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", contract.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if len(c.AdminAddresses()) == 0 {
		return invalid("admins: at least one admin is required")
	}
	if c.QueueDelay < 0 {
		return invalid("queue_delay must not be negative")
	}
	if c.QueueDelay%time.Second != 0 {
		return invalid("queue_delay must be whole seconds")
	}

	switch c.Membership.Kind {
	case MembershipStatic:
	case MembershipERC721:
		if c.Membership.RPCURL == "" {
			return invalid("membership.rpc_url is required for erc721")
		}
		if !common.IsHexAddress(c.NFTAddress) {
			return invalid("nft_address %q is not an evm address", c.NFTAddress)
		}
	default:
		return invalid("membership.kind %q is not one of static, erc721", c.Membership.Kind)
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			return invalid("store.path is required for %s", c.Store.Kind)
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return invalid("store.dsn is required for postgres")
		}
	case StoreRedis:
		if c.Store.Addr == "" {
			return invalid("store.addr is required for redis")
		}
	default:
		return invalid("store.kind %q is not one of memory, file, sqlite, postgres, redis", c.Store.Kind)
	}

	switch c.Payout.Kind {
	case PayoutLedger:
	case PayoutEth:
		if c.Payout.RPCURL == "" {
			return invalid("payout.rpc_url is required for eth")
		}
		if c.PayoutKey() == "" {
			return invalid("payout.private_key or payout.private_key_env is required for eth")
		}
		if c.Payout.ChainID <= 0 {
			return invalid("payout.chain_id must be positive")
		}
		if _, err := c.WeiPerUnit(); err != nil {
			return err
		}
	default:
		return invalid("payout.kind %q is not one of ledger, eth", c.Payout.Kind)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// AdminAddresses returns the normalized, non-empty admin seeds.
func (c *Config) AdminAddresses() []sdk.Address {
	out := make([]sdk.Address, 0, len(c.Admins))
	for _, a := range c.Admins {
		if addr := sdk.NewAddress(a); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// QueueDelaySeconds is QueueDelay in the unit the engine works with.
func (c *Config) QueueDelaySeconds() int64 {
	return int64(c.QueueDelay / time.Second)
}

// PayoutKey resolves the treasury key, preferring the inline value.
func (c *Config) PayoutKey() string {
	if c.Payout.PrivateKey != "" {
		return c.Payout.PrivateKey
	}
	if c.Payout.PrivateKeyEnv != "" {
		return os.Getenv(c.Payout.PrivateKeyEnv)
	}
	return ""
}

// WeiPerUnit parses payout.wei_per_unit, nil when unset.
func (c *Config) WeiPerUnit() (*big.Int, error) {
	if c.Payout.WeiPerUnit == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(c.Payout.WeiPerUnit, 10)
	if !ok || n.Sign() <= 0 {
		return nil, invalid("payout.wei_per_unit %q is not a positive integer", c.Payout.WeiPerUnit)
	}
	return n, nil
}
