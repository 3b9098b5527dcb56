package sdk

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type AddressDomain string

const (
	AddressDomainUser     AddressDomain = "user"
	AddressDomainContract AddressDomain = "contract"
	AddressDomainSystem   AddressDomain = "system"
)

type AddressType string

const (
	AddressTypeEVM     AddressType = "evm"
	AddressTypeKey     AddressType = "key"
	AddressTypeHive    AddressType = "hive"
	AddressTypeSystem  AddressType = "system"
	AddressTypeUnknown AddressType = "unknown"
)

// Address identifies a caller, a proposal target or a token holder.
// Plain 0x hex addresses are stored lower-cased so lookups do not depend on checksum casing.
type Address string

// NewAddress trims the input and normalizes hex addresses.
// Example payload: sdk.NewAddress(" 0xAbC...  ")
func NewAddress(s string) Address {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) && strings.HasPrefix(strings.ToLower(s), "0x") {
		return Address(strings.ToLower(s))
	}
	return Address(s)
}

// String returns the literal representation (like hive:alice) of the address.
// Example payload: sdk.Address("hive:foo").String()
func (a Address) String() string {
	return string(a)
}

// Domain quickly checks the prefix to guess if we deal with user/contract/system domain.
// Example payload: sdk.Address("contract:okinoko").Domain()
func (a Address) Domain() AddressDomain {
	if strings.HasPrefix(a.String(), "system:") {
		return AddressDomainSystem
	}
	if strings.HasPrefix(a.String(), "contract:") {
		return AddressDomainContract
	}
	return AddressDomainUser
}

// Type inspects the prefix to categorize the address (evm, key, hive,...).
// Example payload: sdk.Address("0x52908400098527886e0f7030069857d2e4169ee7").Type()
func (a Address) Type() AddressType {
	s := a.String()
	switch {
	case strings.HasPrefix(s, "0x") && common.IsHexAddress(s):
		return AddressTypeEVM
	case strings.HasPrefix(s, "did:pkh:eip155"):
		return AddressTypeEVM
	case strings.HasPrefix(s, "did:key:"):
		return AddressTypeKey
	case strings.HasPrefix(s, "hive:"):
		return AddressTypeHive
	case strings.HasPrefix(s, "system:"):
		return AddressTypeSystem
	default:
		return AddressTypeUnknown
	}
}

// IsValid returns false if the address type detection failed, used as a light sanity check.
// Example payload: sdk.Address("foo").IsValid()
func (a Address) IsValid() bool {
	return a.Type() != AddressTypeUnknown
}

// HexAddress extracts the 20 byte account from 0x or did:pkh:eip155 addresses.
// ok is false for every other address type.
func (a Address) HexAddress() (common.Address, bool) {
	s := a.String()
	if strings.HasPrefix(s, "did:pkh:eip155") {
		s = s[strings.LastIndex(s, ":")+1:]
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}
