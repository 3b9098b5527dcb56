package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressTypes(t *testing.T) {
	cases := []struct {
		in   string
		want AddressType
	}{
		{"hive:alice", AddressTypeHive},
		{"did:key:z6Mkabc", AddressTypeKey},
		{"did:pkh:eip155:1:0x52908400098527886E0F7030069857D2E4169EE7", AddressTypeEVM},
		{"0x52908400098527886e0f7030069857d2e4169ee7", AddressTypeEVM},
		{"system:fr_balance", AddressTypeSystem},
		{"alice", AddressTypeUnknown},
		{"0x1234", AddressTypeUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Address(tc.in).Type(), tc.in)
	}
	assert.False(t, Address("alice").IsValid())
	assert.True(t, Address("hive:alice").IsValid())
}

func TestNewAddressNormalizesHex(t *testing.T) {
	a := NewAddress("  0x52908400098527886E0F7030069857D2E4169EE7 ")
	assert.Equal(t, Address("0x52908400098527886e0f7030069857d2e4169ee7"), a)
	assert.Equal(t, Address("hive:Alice"), NewAddress("hive:Alice"))
}

func TestHexAddress(t *testing.T) {
	h, ok := Address("did:pkh:eip155:1:0x52908400098527886E0F7030069857D2E4169EE7").HexAddress()
	require.True(t, ok)
	assert.Equal(t, "0x52908400098527886E0F7030069857D2E4169EE7", h.Hex())

	_, ok = Address("hive:alice").HexAddress()
	assert.False(t, ok)
}

func TestDomain(t *testing.T) {
	assert.Equal(t, AddressDomainContract, Address("contract:okinoko").Domain())
	assert.Equal(t, AddressDomainSystem, Address("system:x").Domain())
	assert.Equal(t, AddressDomainUser, Address("hive:bob").Domain())
}

func TestParseTimestamp(t *testing.T) {
	v, ok := ParseTimestamp("1756857600")
	require.True(t, ok)
	assert.Equal(t, int64(1756857600), v)

	v, ok = ParseTimestamp("2025-09-03T00:00:00")
	require.True(t, ok)
	assert.Equal(t, int64(1756857600), v)

	v, ok = ParseTimestamp("2025-09-03T00:00:00Z")
	require.True(t, ok)
	assert.Equal(t, int64(1756857600), v)

	_, ok = ParseTimestamp("yesterday")
	assert.False(t, ok)
}
