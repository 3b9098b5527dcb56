package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"okinoko_vote/contract"
	"okinoko_vote/contract/dao"
	"okinoko_vote/sdk"
)

const (
	headerCaller    = "X-Caller"
	headerTimestamp = "X-Timestamp"
	headerRequestID = "X-Request-ID"

	maxBodyBytes = 64 << 10
)

type requestIDKey struct{}

type handler struct {
	log *slog.Logger

	e       *contract.Engine
	events  *contract.EventLog
	trustTS bool
	now     func() time.Time
}

// requestID tags every request with X-Request-ID, minting one when the client did not.
// The id doubles as the engine tx id.
func (h handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimSpace(req.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), requestIDKey{}, id)))
	})
}

// env builds the call environment. Mutating routes require a caller.
func (h handler) env(req *http.Request, requireCaller bool) (sdk.Env, error) {
	caller := sdk.NewAddress(req.Header.Get(headerCaller))
	if requireCaller && caller == "" {
		return sdk.Env{}, fmt.Errorf("%w: %s header required", contract.ErrUnauthorized, headerCaller)
	}
	ts := h.now().Unix()
	if h.trustTS {
		if raw := strings.TrimSpace(req.Header.Get(headerTimestamp)); raw != "" {
			parsed, ok := sdk.ParseTimestamp(raw)
			if !ok {
				return sdk.Env{}, fmt.Errorf("%w: bad %s %q", contract.ErrInvalidInput, headerTimestamp, raw)
			}
			ts = parsed
		}
	}
	id, _ := req.Context().Value(requestIDKey{}).(string)
	return sdk.Env{TxID: id, Sender: caller, Timestamp: ts}, nil
}

func decodeBody(req *http.Request, v any) error {
	defer req.Body.Close()
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", contract.ErrInvalidInput, err)
	}
	return nil
}

func pathID(req *http.Request) (uint64, error) {
	raw := mux.Vars(req)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", contract.ErrInvalidInput, raw)
	}
	return id, nil
}

func pathAddress(req *http.Request) sdk.Address {
	return sdk.NewAddress(mux.Vars(req)["address"])
}

// timestamp accepts unix seconds as a number or any string sdk.ParseTimestamp understands.
type timestamp int64

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*t = timestamp(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a number or string")
	}
	v, ok := sdk.ParseTimestamp(s)
	if !ok {
		return fmt.Errorf("unrecognized timestamp %q", s)
	}
	*t = timestamp(v)
	return nil
}

// -----------------------------------------------------------------------------
// Views
// -----------------------------------------------------------------------------

type proposalView struct {
	ID           uint64            `json:"id"`
	Creator      sdk.Address       `json:"creator"`
	Description  string            `json:"description"`
	StartTime    int64             `json:"start_time"`
	Deadline     int64             `json:"deadline"`
	Target       sdk.Address       `json:"target"`
	Amount       uint64            `json:"amount"`
	State        dao.ProposalState `json:"state"`
	VotesFor     uint64            `json:"votes_for"`
	VotesAgainst uint64            `json:"votes_against"`
	VoterCount   uint64            `json:"voter_count"`
	CreatedAt    int64             `json:"created_at"`
	QueuedAt     int64             `json:"queued_at,omitempty"`
	ExecutedAt   int64             `json:"executed_at,omitempty"`
	Tx           string            `json:"tx,omitempty"`
}

func newProposalView(p *dao.Proposal) proposalView {
	return proposalView{
		ID:           p.ID,
		Creator:      p.Creator,
		Description:  p.Description,
		StartTime:    p.StartTime,
		Deadline:     p.Deadline,
		Target:       p.Target,
		Amount:       p.Amount,
		State:        p.State,
		VotesFor:     p.VotesFor,
		VotesAgainst: p.VotesAgainst,
		VoterCount:   p.VoterCount,
		CreatedAt:    p.CreatedAt,
		QueuedAt:     p.QueuedAt,
		ExecutedAt:   p.ExecutedAt,
		Tx:           p.Tx,
	}
}

type voteView struct {
	ProposalID uint64      `json:"proposal_id"`
	Voter      sdk.Address `json:"voter"`
	Support    bool        `json:"support"`
	Weight     uint64      `json:"weight"`
	CastAt     int64       `json:"cast_at"`
}

// respondProposal reloads id after a transition and writes it with status.
func (h handler) respondProposal(w http.ResponseWriter, req *http.Request, status int, id uint64) {
	p, err := h.e.GetProposal(req.Context(), id)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, status, newProposalView(p))
}

// -----------------------------------------------------------------------------
// Admins
// -----------------------------------------------------------------------------

func (h handler) HandleAddAdmin(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, true)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	var body struct {
		Address string `json:"address"`
	}
	if err := decodeBody(req, &body); err != nil {
		writeError(h.log, w, err)
		return
	}
	addr := sdk.NewAddress(body.Address)
	if err := h.e.AddAdmin(req.Context(), env, addr); err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]any{"address": addr, "admin": true})
}

func (h handler) HandleListAdmins(w http.ResponseWriter, req *http.Request) {
	admins, err := h.e.Admins(req.Context())
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]any{"admins": admins})
}

func (h handler) HandleIsAdmin(w http.ResponseWriter, req *http.Request) {
	addr := pathAddress(req)
	ok, err := h.e.IsAdmin(req.Context(), addr)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]any{"address": addr, "admin": ok})
}

// -----------------------------------------------------------------------------
// Proposals
// -----------------------------------------------------------------------------

func (h handler) HandleCreateProposal(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, true)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	var body struct {
		Description string    `json:"description"`
		StartTime   timestamp `json:"start_time"`
		Deadline    timestamp `json:"deadline"`
		Target      string    `json:"target"`
		Amount      uint64    `json:"amount"`
	}
	if err := decodeBody(req, &body); err != nil {
		writeError(h.log, w, err)
		return
	}
	id, err := h.e.NewProposal(req.Context(), env, contract.NewProposalArgs{
		Description: body.Description,
		StartTime:   int64(body.StartTime),
		Deadline:    int64(body.Deadline),
		Target:      sdk.NewAddress(body.Target),
		Amount:      body.Amount,
	})
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	h.respondProposal(w, req, http.StatusCreated, id)
}

func (h handler) HandleProposalCount(w http.ResponseWriter, req *http.Request) {
	n, err := h.e.GetLength(req.Context())
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]uint64{"count": n})
}

func (h handler) HandleGetProposal(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	h.respondProposal(w, req, http.StatusOK, id)
}

// transition runs a caller-authenticated proposal operation and answers with the updated proposal.
func (h handler) transition(op func(ctx context.Context, env sdk.Env, id uint64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		env, err := h.env(req, true)
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		id, err := pathID(req)
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		if err := op(req.Context(), env, id); err != nil {
			writeError(h.log, w, err)
			return
		}
		h.respondProposal(w, req, http.StatusOK, id)
	}
}

func (h handler) HandleDelist(w http.ResponseWriter, req *http.Request) {
	h.transition(h.e.DelistProposal)(w, req)
}

func (h handler) HandleQueue(w http.ResponseWriter, req *http.Request) {
	h.transition(h.e.AddToQueue)(w, req)
}

func (h handler) HandleExecute(w http.ResponseWriter, req *http.Request) {
	h.transition(h.e.Execute)(w, req)
}

func (h handler) HandleEvaluate(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, true)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	id, err := pathID(req)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	passed, err := h.e.IsPassed(req.Context(), env, id)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	p, err := h.e.GetProposal(req.Context(), id)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]any{"passed": passed, "proposal": newProposalView(p)})
}

// -----------------------------------------------------------------------------
// Votes
// -----------------------------------------------------------------------------

func (h handler) HandleCastVote(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, true)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	id, err := pathID(req)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	var body struct {
		Support *bool `json:"support"`
	}
	if err := decodeBody(req, &body); err != nil {
		writeError(h.log, w, err)
		return
	}
	if body.Support == nil {
		writeError(h.log, w, fmt.Errorf("%w: support is required", contract.ErrInvalidInput))
		return
	}
	if err := h.e.CastVote(req.Context(), env, id, *body.Support); err != nil {
		writeError(h.log, w, err)
		return
	}
	h.respondVote(w, req, http.StatusCreated, id, env.Sender)
}

func (h handler) HandleRemoveVote(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, true)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	id, err := pathID(req)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	if err := h.e.RemoveVote(req.Context(), env, id); err != nil {
		writeError(h.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h handler) HandleGetVote(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	h.respondVote(w, req, http.StatusOK, id, pathAddress(req))
}

func (h handler) respondVote(w http.ResponseWriter, req *http.Request, status int, id uint64, voter sdk.Address) {
	rec, err := h.e.GetVote(req.Context(), id, voter)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, status, voteView{
		ProposalID: id,
		Voter:      voter,
		Support:    rec.Support,
		Weight:     rec.Weight,
		CastAt:     rec.CastAt,
	})
}

// -----------------------------------------------------------------------------
// Treasury and membership
// -----------------------------------------------------------------------------

func (h handler) HandleTreasury(w http.ResponseWriter, req *http.Request) {
	b, err := h.e.TreasuryBalance(req.Context())
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]uint64{"balance": b})
}

func (h handler) HandleDeposit(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, true)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	var body struct {
		Amount uint64 `json:"amount"`
	}
	if err := decodeBody(req, &body); err != nil {
		writeError(h.log, w, err)
		return
	}
	if err := h.e.Deposit(req.Context(), env, body.Amount); err != nil {
		writeError(h.log, w, err)
		return
	}
	h.HandleTreasury(w, req)
}

func (h handler) HandleMember(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, false)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	addr := pathAddress(req)
	b, err := h.e.CheckBalance(req.Context(), env, addr)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]any{"address": addr, "balance": b, "can_vote": b > 0})
}

func (h handler) HandleTokenOwner(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, false)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	id, err := pathID(req)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	owner, err := h.e.OwnerOf(req.Context(), env, id)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]any{"token_id": id, "owner": owner})
}

// -----------------------------------------------------------------------------
// Events and dispatch
// -----------------------------------------------------------------------------

// HandleEvents lists retained events, optionally filtered with ?kind=.
func (h handler) HandleEvents(w http.ResponseWriter, req *http.Request) {
	if h.events == nil {
		writeJSON(h.log, w, http.StatusOK, []json.RawMessage{})
		return
	}
	kind := req.URL.Query().Get("kind")
	out := []json.RawMessage{}
	for _, ev := range h.events.Events() {
		if kind != "" && ev.Kind() != kind {
			continue
		}
		b, err := dao.MarshalEvent(ev)
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		out = append(out, b)
	}
	writeJSON(h.log, w, http.StatusOK, out)
}

// HandleCall runs a named action with the raw request body as its payload.
func (h handler) HandleCall(w http.ResponseWriter, req *http.Request) {
	env, err := h.env(req, true)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	defer req.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		h.log.Warn("Failed to read request body", "route", "call", "err", err)
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	res, err := h.e.Call(req.Context(), env, mux.Vars(req)["action"], strings.TrimSpace(string(payload)))
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]string{"result": res})
}
