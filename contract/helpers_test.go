package contract_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/prometheus/client_golang/prometheus"

	"okinoko_vote/contract"
	"okinoko_vote/contract/dao"
	"okinoko_vote/membership"
	"okinoko_vote/payout"
	"okinoko_vote/sdk"
	"okinoko_vote/store"
)

// =============================================================================
// Test Harness
// =============================================================================

const (
	admin1   = sdk.Address("hive:admin1")
	admin2   = sdk.Address("hive:admin2")
	member1  = sdk.Address("hive:m1")
	member2  = sdk.Address("hive:m2")
	outsider = sdk.Address("hive:n")
	target   = sdk.Address("hive:target")

	// 2025-09-03T00:00:00Z
	t0 = int64(1756857600)
)

type EngineTest struct {
	Engine   *contract.Engine
	State    *store.MemoryState
	Members  *membership.Static
	Payer    *payout.Ledger
	Events   *contract.EventLog
	Registry *prometheus.Registry

	txSeq int
}

type setupOpts struct {
	queueDelay int64
	state      store.State
	payer      contract.Payer
}

type setupOpt func(*setupOpts)

func withQueueDelay(d int64) setupOpt { return func(o *setupOpts) { o.queueDelay = d } }

func withState(s store.State) setupOpt { return func(o *setupOpts) { o.state = s } }

// withPayer replaces the recording ledger as the engine's payer. et.Payer stays unused.
func withPayer(p contract.Payer) setupOpt { return func(o *setupOpts) { o.payer = p } }

// SetupEngineTest builds an engine with admins {admin1, admin2} and members m1=2, m2=1, n=0.
func SetupEngineTest(t *testing.T, opts ...setupOpt) *EngineTest {
	t.Helper()
	o := setupOpts{}
	for _, fn := range opts {
		fn(&o)
	}
	et := &EngineTest{
		State:    store.NewMemoryState(),
		Members:  membership.NewStatic(),
		Payer:    payout.NewLedger(),
		Events:   contract.NewEventLog(0),
		Registry: prometheus.NewRegistry(),
	}
	mustMint(t, et.Members, 1, member1)
	mustMint(t, et.Members, 2, member1)
	mustMint(t, et.Members, 3, member2)

	var st store.State = et.State
	if o.state != nil {
		st = o.state
	}
	var payer contract.Payer = et.Payer
	if o.payer != nil {
		payer = o.payer
	}
	metrics, err := contract.NewMetrics(et.Registry)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	et.Engine, err = contract.NewEngine(context.Background(), contract.Config{
		Admins:     []sdk.Address{admin1, admin2},
		NFTAddress: "0x00000000000000000000000000000000000000aa",
		QueueDelay: o.queueDelay,
		State:      st,
		Membership: et.Members,
		Payer:      payer,
		Sinks:      []contract.Sink{et.Events},
		Logger:     slogt.New(t),
		Metrics:    metrics,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return et
}

func mustMint(t *testing.T, s *membership.Static, id uint64, owner sdk.Address) {
	t.Helper()
	if err := s.Mint(id, owner); err != nil {
		t.Fatalf("mint %d: %v", id, err)
	}
}

// Env returns a fresh call environment for caller at ts.
func (et *EngineTest) Env(caller sdk.Address, ts int64) sdk.Env {
	et.txSeq++
	return sdk.Env{TxID: "tx" + strconv.Itoa(et.txSeq), Sender: caller, Timestamp: ts}
}

// CallEngine dispatches an action by name and fails the test if the outcome does not match expectSuccess.
func CallEngine(t *testing.T, et *EngineTest, action, payload string, caller sdk.Address, expectSuccess bool, ts int64) (string, error) {
	t.Helper()
	res, err := et.Engine.Call(context.Background(), et.Env(caller, ts), action, payload)
	if expectSuccess && err != nil {
		t.Fatalf("%s(%q) by %s: unexpected error: %v", action, payload, caller, err)
	}
	if !expectSuccess && err == nil {
		t.Fatalf("%s(%q) by %s: expected failure, got %q", action, payload, caller, res)
	}
	return res, err
}

// expectKind fails unless err wraps the given rejection.
func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

// createProposal opens a proposal by member1 voting in [t0, t0+100) paying 10 to target.
func createProposal(t *testing.T, et *EngineTest) uint64 {
	t.Helper()
	return createProposalWith(t, et, member1, contract.NewProposalArgs{
		Description: "fund infra",
		StartTime:   t0,
		Deadline:    t0 + 100,
		Target:      target,
		Amount:      10,
	})
}

func createProposalWith(t *testing.T, et *EngineTest, creator sdk.Address, args contract.NewProposalArgs) uint64 {
	t.Helper()
	id, err := et.Engine.NewProposal(context.Background(), et.Env(creator, t0), args)
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return id
}

func getProposal(t *testing.T, et *EngineTest, id uint64) *dao.Proposal {
	t.Helper()
	p, err := et.Engine.GetProposal(context.Background(), id)
	if err != nil {
		t.Fatalf("get proposal %d: %v", id, err)
	}
	return p
}

func expectState(t *testing.T, et *EngineTest, id uint64, want dao.ProposalState) {
	t.Helper()
	if got := getProposal(t, et, id).State; got != want {
		t.Fatalf("proposal %d: expected state %s, got %s", id, want, got)
	}
}

func treasury(t *testing.T, et *EngineTest) uint64 {
	t.Helper()
	b, err := et.Engine.TreasuryBalance(context.Background())
	if err != nil {
		t.Fatalf("treasury balance: %v", err)
	}
	return b
}

// passProposal drives a fresh proposal to Passed with member1 voting for.
func passProposal(t *testing.T, et *EngineTest) uint64 {
	t.Helper()
	ctx := context.Background()
	id := createProposal(t, et)
	if err := et.Engine.CastVote(ctx, et.Env(member1, t0), id, true); err != nil {
		t.Fatalf("vote: %v", err)
	}
	passed, err := et.Engine.IsPassed(ctx, et.Env(admin1, t0+100), id)
	if err != nil || !passed {
		t.Fatalf("expected proposal %d to pass, got %v %v", id, passed, err)
	}
	return id
}

// queueProposal drives a fresh proposal to Queued at t0+100.
func queueProposal(t *testing.T, et *EngineTest) uint64 {
	t.Helper()
	id := passProposal(t, et)
	if err := et.Engine.AddToQueue(context.Background(), et.Env(admin1, t0+100), id); err != nil {
		t.Fatalf("queue: %v", err)
	}
	return id
}

func payloadID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func votePayload(id uint64, support bool) string {
	if support {
		return fmt.Sprintf("%d|1", id)
	}
	return fmt.Sprintf("%d|0", id)
}

// failingState wraps a MemoryState, counts batches and fails every Apply once armed.
type failingState struct {
	*store.MemoryState
	failApply bool
	applies   int
}

func (f *failingState) Apply(ctx context.Context, muts []store.Mutation) error {
	f.applies++
	if f.failApply {
		return errors.New("disk full")
	}
	return f.MemoryState.Apply(ctx, muts)
}
