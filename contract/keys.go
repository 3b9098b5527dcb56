package contract

import "okinoko_vote/sdk"

const (
	// kContractConfig holds the pipe encoded ContractConfig.
	kContractConfig byte = 0x01
	// kAdmin flags admin addresses with "1".
	kAdmin byte = 0x02
	// kAdminIndex is the base for the chunked admin list.
	kAdminIndex byte = 0x03
	// kProposalMeta contains encoded Proposal records.
	kProposalMeta byte = 0x10
	// kVoteReceipt stores one VoteRecord per proposal+voter.
	kVoteReceipt byte = 0x20
)

// packU64LEInline sprinkles a uint64 into dst in little-endian order so our keys stay compact.
func packU64LEInline(x uint64, dst []byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
	dst[4] = byte(x >> 32)
	dst[5] = byte(x >> 40)
	dst[6] = byte(x >> 48)
	dst[7] = byte(x >> 56)
}

// packU64LE appends the encoded number to dst and returns the new slice.
func packU64LE(x uint64, dst []byte) []byte {
	var tmp [8]byte
	packU64LEInline(x, tmp[:])
	return append(dst, tmp[:]...)
}

func contractConfigKey() string {
	return string([]byte{kContractConfig})
}

// adminKey is the prefix byte followed by the raw address.
func adminKey(addr sdk.Address) string {
	s := addr.String()
	buf := make([]byte, 0, 1+len(s))
	buf = append(buf, kAdmin)
	buf = append(buf, s...)
	return string(buf)
}

func adminIndexBase() string {
	return string([]byte{kAdminIndex}) + "admins"
}

// proposalKey encodes id under 0x10 prefix keeping metadata lumps contiguous.
func proposalKey(id uint64) string {
	var buf [9]byte
	buf[0] = kProposalMeta
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// proposalVoteKey mixes proposal id plus address bytes so a receipt lookup is one read.
func proposalVoteKey(id uint64, voter sdk.Address) string {
	addr := voter.String()
	buf := make([]byte, 0, 1+8+len(addr))
	buf = append(buf, kVoteReceipt)
	buf = packU64LE(id, buf)
	buf = append(buf, addr...)
	return string(buf)
}
