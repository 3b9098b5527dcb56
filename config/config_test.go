package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_vote/contract"
	"okinoko_vote/sdk"
)

func TestDefaultNeedsAdmins(t *testing.T) {
	cfg := Default()
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, PayoutLedger, cfg.Payout.Kind)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Listen)
	assert.ErrorIs(t, cfg.Validate(), contract.ErrInvalidConfig)

	cfg.Admins = []string{"hive:admin"}
	assert.NoError(t, cfg.Validate())
}

func TestParseFull(t *testing.T) {
	t.Setenv("TREASURY_KEY", "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	cfg, err := Parse([]byte(`
admins: [" hive:admin1 ", "0xABCDEFabcdef0000000000000000000000000001", ""]
nft_address: "0x00000000000000000000000000000000000000aa"
queue_delay: 1h
membership:
  kind: erc721
  rpc_url: http://localhost:8545
store:
  kind: sqlite
  path: /var/lib/okinoko/state.db
payout:
  kind: eth
  rpc_url: http://localhost:8545
  private_key_env: TREASURY_KEY
  chain_id: 1337
  wei_per_unit: "1000000000000000"
events:
  nats_url: nats://localhost:4222
http:
  listen: ":9090"
  trust_timestamp_header: true
log_level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, []sdk.Address{"hive:admin1", "0xabcdefabcdef0000000000000000000000000001"}, cfg.AdminAddresses())
	assert.Equal(t, int64(3600), cfg.QueueDelaySeconds())
	assert.Equal(t, MembershipERC721, cfg.Membership.Kind)
	assert.Equal(t, "/var/lib/okinoko/state.db", cfg.Store.Path)
	assert.Equal(t, "okinoko:", cfg.Store.Prefix, "defaults survive partial sections")
	assert.Equal(t, "okinoko.vote", cfg.Events.SubjectPrefix)
	assert.True(t, cfg.HTTP.TrustTimestampHeader)
	assert.Len(t, cfg.PayoutKey(), 64)

	wei, err := cfg.WeiPerUnit()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000_000_000), wei)
}

func TestParseStaticMembership(t *testing.T) {
	cfg, err := Parse([]byte(`
admins: ["hive:a1"]
membership:
  balances:
    hive:m1: 2
  owners:
    3: hive:m2
`))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cfg.Membership.Balances["hive:m1"])
	assert.Equal(t, "hive:m2", cfg.Membership.Owners[3])
	wei, err := cfg.WeiPerUnit()
	require.NoError(t, err)
	assert.Nil(t, wei)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no admins", `log_level: info`},
		{"empty file", ``},
		{"unknown key", "admins: ['hive:a']\nadmin: ['hive:b']"},
		{"negative delay", "admins: ['hive:a']\nqueue_delay: -1s"},
		{"fractional delay", "admins: ['hive:a']\nqueue_delay: 1500ms"},
		{"bad membership", "admins: ['hive:a']\nmembership: {kind: snapshot}"},
		{"erc721 without rpc", "admins: ['hive:a']\nnft_address: '0x00000000000000000000000000000000000000aa'\nmembership: {kind: erc721}"},
		{"erc721 bad nft", "admins: ['hive:a']\nnft_address: hive:nft\nmembership: {kind: erc721, rpc_url: 'http://x'}"},
		{"bad store", "admins: ['hive:a']\nstore: {kind: mongo}"},
		{"file without path", "admins: ['hive:a']\nstore: {kind: file}"},
		{"postgres without dsn", "admins: ['hive:a']\nstore: {kind: postgres}"},
		{"redis without addr", "admins: ['hive:a']\nstore: {kind: redis}"},
		{"eth without key", "admins: ['hive:a']\npayout: {kind: eth, rpc_url: 'http://x', chain_id: 1}"},
		{"eth without chain", "admins: ['hive:a']\npayout: {kind: eth, rpc_url: 'http://x', private_key: 'ab'}"},
		{"eth bad scale", "admins: ['hive:a']\npayout: {kind: eth, rpc_url: 'http://x', private_key: 'ab', chain_id: 1, wei_per_unit: '0'}"},
		{"bad level", "admins: ['hive:a']\nlog_level: loud"},
		{"not yaml", "admins: ['hive:a'"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.ErrorIs(t, err, contract.ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "okinoko.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admins: ['hive:a']\nqueue_delay: 90s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.QueueDelay)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
