package dao

import (
	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jwriter"
)

// MarshalEvent renders an event as a flat json object with a leading "kind" field.
// Example payload: dao.MarshalEvent(dao.EventVoteRemoved{ProposalID: 1, Voter: "hive:bob"})
func MarshalEvent(ev Event) ([]byte, error) {
	return tinyjson.Marshal(ev)
}

type objWriter struct {
	w     *jwriter.Writer
	first bool
}

func openObject(w *jwriter.Writer, kind string) *objWriter {
	w.RawByte('{')
	o := &objWriter{w: w, first: true}
	o.field("kind")
	w.String(kind)
	return o
}

func (o *objWriter) field(name string) {
	if !o.first {
		o.w.RawByte(',')
	}
	o.first = false
	o.w.String(name)
	o.w.RawByte(':')
}

func (o *objWriter) str(name, v string) {
	o.field(name)
	o.w.String(v)
}

func (o *objWriter) u64(name string, v uint64) {
	o.field(name)
	o.w.Uint64(v)
}

func (o *objWriter) i64(name string, v int64) {
	o.field(name)
	o.w.Int64(v)
}

func (o *objWriter) boolean(name string, v bool) {
	o.field(name)
	o.w.Bool(v)
}

func (o *objWriter) close() {
	o.w.RawByte('}')
}

func (e EventProposalCreated) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.u64("id", e.ID)
	o.str("creator", e.Creator.String())
	o.str("description", e.Description)
	o.i64("startTime", e.StartTime)
	o.i64("deadline", e.Deadline)
	o.str("target", e.Target.String())
	o.u64("amount", e.Amount)
	o.close()
}

func (e EventProposalCancelled) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.u64("id", e.ID)
	o.str("by", e.By.String())
	o.close()
}

func (e EventProposalPassed) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.u64("id", e.ID)
	o.u64("votesFor", e.VotesFor)
	o.u64("votesAgainst", e.VotesAgainst)
	o.close()
}

func (e EventProposalQueued) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.u64("id", e.ID)
	o.i64("readyAt", e.ReadyAt)
	o.close()
}

func (e EventProposalExecuted) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.u64("id", e.ID)
	o.str("target", e.Target.String())
	o.u64("amount", e.Amount)
	o.close()
}

func (e EventVoteCast) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.u64("proposalId", e.ProposalID)
	o.str("voter", e.Voter.String())
	o.boolean("support", e.Support)
	o.u64("weight", e.Weight)
	o.close()
}

func (e EventVoteRemoved) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.u64("proposalId", e.ProposalID)
	o.str("voter", e.Voter.String())
	o.close()
}

func (e EventAdminAdded) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.str("admin", e.Admin.String())
	o.str("by", e.By.String())
	o.close()
}

func (e EventFundsReceived) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w, e.Kind())
	o.str("from", e.From.String())
	o.u64("amount", e.Amount)
	o.close()
}
