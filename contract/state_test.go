package contract

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_vote/store"
)

func TestTxStateOverlay(t *testing.T) {
	ctx := context.Background()
	base := store.NewMemoryState()
	require.NoError(t, base.Set(ctx, "a", "1"))
	require.NoError(t, base.Set(ctx, "b", "2"))

	st := newTxState(ctx, base)
	st.Set("a", "10")
	st.Delete("b")
	st.Set("c", "3")

	v, err := st.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "10", *v)
	v, err = st.Get("b")
	require.NoError(t, err)
	assert.Nil(t, v)

	// nothing reached the backend yet
	v, _ = base.Get(ctx, "a")
	assert.Equal(t, "1", *v)
	assert.Equal(t, 2, base.Len())

	require.NoError(t, st.commit())
	v, _ = base.Get(ctx, "a")
	assert.Equal(t, "10", *v)
	v, _ = base.Get(ctx, "b")
	assert.Nil(t, v)
	assert.Equal(t, 2, base.Len())
	assert.False(t, st.dirty())
}

func TestSetIfChangedSkipsEqualValues(t *testing.T) {
	ctx := context.Background()
	base := store.NewMemoryState()
	require.NoError(t, base.Set(ctx, "k", "v"))
	st := newTxState(ctx, base)
	require.NoError(t, st.setIfChanged("k", "v"))
	assert.False(t, st.dirty())
	require.NoError(t, st.setIfChanged("k", "w"))
	assert.Equal(t, []store.Mutation{{Key: "k", Value: strPtr("w")}}, st.mutations())
}

func strPtr(s string) *string { return &s }

func TestIndexChunkRollover(t *testing.T) {
	st := newTxState(context.Background(), store.NewMemoryState())
	total := maxChunkSize + 3
	for i := 0; i < total; i++ {
		require.NoError(t, addToIndex(st, "idx", strconv.Itoa(i)))
	}
	n, err := getChunkCount(st, "idx")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := listIndex(st, "idx")
	require.NoError(t, err)
	require.Len(t, all, total)
	assert.Equal(t, "0", all[0])
	assert.Equal(t, strconv.Itoa(total-1), all[total-1])
}

func TestKeysAreDisjoint(t *testing.T) {
	keys := []string{
		contractConfigKey(),
		adminKey("hive:a"),
		adminIndexBase(),
		proposalKey(1),
		proposalVoteKey(1, "hive:a"),
		ProposalsCount,
		TreasuryBalanceKey,
	}
	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
	assert.NotEqual(t, proposalVoteKey(1, "hive:a"), proposalVoteKey(256, "hive:a"))
}

func TestContractConfigEncoding(t *testing.T) {
	cfg := &ContractConfig{NFTAddress: "0xabc", QueueDelay: 3600}
	got, err := decodeContractConfig(encodeContractConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	_, err = decodeContractConfig("only-one-part")
	assert.Error(t, err)
	_, err = decodeContractConfig("0xabc|soon")
	assert.Error(t, err)
}

func TestDecodeCreateProposalArgs(t *testing.T) {
	args, err := decodeCreateProposalArgs("upgrade node infra|2025-09-03T00:00:00|2025-09-05T00:00:00|0xABCDEFabcdef0000000000000000000000000001|250")
	require.NoError(t, err)
	assert.Equal(t, NewProposalArgs{
		Description: "upgrade node infra",
		StartTime:   1756857600,
		Deadline:    1757030400,
		Target:      "0xabcdefabcdef0000000000000000000000000001",
		Amount:      250,
	}, args)
}

func TestDecodeVoteArgs(t *testing.T) {
	for in, want := range map[string]bool{"3|1": true, "3|no": false, "3|TRUE": true, "3|against": false} {
		id, support, err := decodeVoteArgs(in)
		require.NoError(t, err, in)
		assert.Equal(t, uint64(3), id)
		assert.Equal(t, want, support, in)
	}
}
