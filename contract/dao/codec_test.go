package dao

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalCodec(t *testing.T) {
	in := &Proposal{
		ID:           7,
		Creator:      "hive:someone",
		Description:  "upgrade node infra",
		StartTime:    1756857600,
		Deadline:     1757030400,
		Target:       "0x52908400098527886e0f7030069857d2e4169ee7",
		Amount:       250,
		State:        ProposalQueued,
		VotesFor:     3,
		VotesAgainst: 1,
		VoterCount:   2,
		CreatedAt:    1756857000,
		QueuedAt:     1757030500,
		Tx:           "proposal_create-tx",
	}
	out, err := DecodeProposal(EncodeProposal(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeProposalRejectsGarbage(t *testing.T) {
	_, err := DecodeProposal(nil)
	assert.Error(t, err)

	_, err = DecodeProposal([]byte{9})
	assert.ErrorContains(t, err, "unknown proposal layout")

	enc := EncodeProposal(&Proposal{ID: 1, Description: "x"})
	_, err = DecodeProposal(enc[:len(enc)-3])
	assert.Error(t, err)
}

func TestVoteRecordCodec(t *testing.T) {
	for _, rec := range []VoteRecord{
		{Support: true, Weight: 2, CastAt: 1756857600},
		{Support: false, Weight: 1 << 40, CastAt: 0},
	} {
		out, err := DecodeVoteRecord(EncodeVoteRecord(&rec))
		require.NoError(t, err)
		assert.Equal(t, rec, *out)
	}
}

func TestVoteRecordSigned(t *testing.T) {
	assert.Equal(t, int64(2), VoteRecord{Support: true, Weight: 2}.Signed())
	assert.Equal(t, int64(-3), VoteRecord{Support: false, Weight: 3}.Signed())
}

func TestPassRule(t *testing.T) {
	cases := []struct {
		f, a uint64
		want bool
	}{
		{0, 0, false},
		{1, 1, false},
		{2, 1, true},
		{1, 2, false},
		{1, 0, true},
	}
	for _, c := range cases {
		p := Proposal{VotesFor: c.f, VotesAgainst: c.a}
		assert.Equal(t, c.want, p.Decided(), "for=%d against=%d", c.f, c.a)
	}
}

func TestVotingOpen(t *testing.T) {
	p := Proposal{StartTime: 100, Deadline: 200}
	assert.False(t, p.VotingOpen(99))
	assert.True(t, p.VotingOpen(100))
	assert.True(t, p.VotingOpen(199))
	assert.False(t, p.VotingOpen(200))
}

func TestProposalStateString(t *testing.T) {
	assert.Equal(t, "queued", ProposalQueued.String())
	assert.Equal(t, "unspecified", ProposalState(42).String())
	assert.True(t, ProposalExecuted.Terminal())
	assert.False(t, ProposalPassed.Terminal())
}

func TestMarshalEvent(t *testing.T) {
	raw, err := MarshalEvent(EventVoteCast{ProposalID: 3, Voter: "hive:bob", Support: true, Weight: 2})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "vote_cast", got["kind"])
	assert.Equal(t, float64(3), got["proposalId"])
	assert.Equal(t, "hive:bob", got["voter"])
	assert.Equal(t, true, got["support"])
	assert.Equal(t, float64(2), got["weight"])
}

func TestEventLines(t *testing.T) {
	assert.Equal(t, "pc|id:1|by:hive:a|to:hive:t|am:5|s:10|d:20",
		EventProposalCreated{ID: 1, Creator: "hive:a", Target: "hive:t", Amount: 5, StartTime: 10, Deadline: 20}.String())
	assert.Equal(t, "ps|id:2|s:passed|f:3|a:1", EventProposalPassed{ID: 2, VotesFor: 3, VotesAgainst: 1}.String())
	assert.Equal(t, "vr|id:4|by:hive:b", EventVoteRemoved{ProposalID: 4, Voter: "hive:b"}.String())
}
