package dao

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"okinoko_vote/sdk"
)

// proposalLayout is bumped whenever the field order of EncodeProposal changes.
const proposalLayout byte = 1

var errEOF = errors.New("unexpected EOF")

type binWriter struct {
	buf bytes.Buffer
}

func newWriter() *binWriter { return &binWriter{} }

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *binWriter) writeVarInt(v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

func (w *binWriter) writeAddress(a sdk.Address) {
	w.writeString(a.String())
}

// EncodeProposal serializes a proposal to a compact binary form.
func EncodeProposal(prpsl *Proposal) []byte {
	w := newWriter()
	w.buf.WriteByte(proposalLayout)
	w.writeUint64(prpsl.ID)
	w.writeAddress(prpsl.Creator)
	w.writeString(prpsl.Description)
	w.writeInt64(prpsl.StartTime)
	w.writeInt64(prpsl.Deadline)
	w.writeAddress(prpsl.Target)
	w.writeUint64(prpsl.Amount)
	w.buf.WriteByte(byte(prpsl.State))
	w.writeUint64(prpsl.VotesFor)
	w.writeUint64(prpsl.VotesAgainst)
	w.writeVarUint(prpsl.VoterCount)
	w.writeInt64(prpsl.CreatedAt)
	w.writeInt64(prpsl.QueuedAt)
	w.writeInt64(prpsl.ExecutedAt)
	w.writeString(prpsl.Tx)
	return w.bytes()
}

// EncodeVoteRecord packs the direction, the sampled weight and the cast time.
func EncodeVoteRecord(rec *VoteRecord) []byte {
	w := newWriter()
	w.writeBool(rec.Support)
	w.writeVarUint(rec.Weight)
	w.writeVarInt(rec.CastAt)
	return w.bytes()
}

// ------------------------------------------------------------------
// Decoder helpers
// ------------------------------------------------------------------

type binReader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *binReader {
	return &binReader{data: data}
}

func (r *binReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *binReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

func (r *binReader) readUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, errEOF
	}
	val := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return val, nil
}

func (r *binReader) readInt64() (int64, error) {
	v, err := r.readUint64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func (r *binReader) readVarUint() (uint64, error) {
	val, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varuint")
	}
	r.pos += n
	return val, nil
}

func (r *binReader) readVarInt() (int64, error) {
	val, n := binary.Varint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varint")
	}
	r.pos += n
	return val, nil
}

func (r *binReader) readString() (string, error) {
	l, err := r.readVarUint()
	if err != nil {
		return "", err
	}
	if l > uint64(len(r.data)-r.pos) {
		return "", errEOF
	}
	s := string(r.data[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return s, nil
}

func (r *binReader) readAddress() (sdk.Address, error) {
	s, err := r.readString()
	return sdk.Address(s), err
}

// DecodeProposal is the inverse of EncodeProposal.
func DecodeProposal(data []byte) (*Proposal, error) {
	r := newReader(data)
	layout, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if layout != proposalLayout {
		return nil, fmt.Errorf("unknown proposal layout %d", layout)
	}
	p := &Proposal{}
	if p.ID, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.Creator, err = r.readAddress(); err != nil {
		return nil, err
	}
	if p.Description, err = r.readString(); err != nil {
		return nil, err
	}
	if p.StartTime, err = r.readInt64(); err != nil {
		return nil, err
	}
	if p.Deadline, err = r.readInt64(); err != nil {
		return nil, err
	}
	if p.Target, err = r.readAddress(); err != nil {
		return nil, err
	}
	if p.Amount, err = r.readUint64(); err != nil {
		return nil, err
	}
	state, err := r.readByte()
	if err != nil {
		return nil, err
	}
	p.State = ProposalState(state)
	if p.VotesFor, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.VotesAgainst, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.VoterCount, err = r.readVarUint(); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = r.readInt64(); err != nil {
		return nil, err
	}
	if p.QueuedAt, err = r.readInt64(); err != nil {
		return nil, err
	}
	if p.ExecutedAt, err = r.readInt64(); err != nil {
		return nil, err
	}
	if p.Tx, err = r.readString(); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeVoteRecord is the inverse of EncodeVoteRecord.
func DecodeVoteRecord(data []byte) (*VoteRecord, error) {
	r := newReader(data)
	rec := &VoteRecord{}
	var err error
	if rec.Support, err = r.readBool(); err != nil {
		return nil, err
	}
	if rec.Weight, err = r.readVarUint(); err != nil {
		return nil, err
	}
	if rec.CastAt, err = r.readVarInt(); err != nil {
		return nil, err
	}
	return rec, nil
}
