package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_vote/config"
	"okinoko_vote/contract"
)

const t0 = int64(1756857600)

// writeConfig writes a node config backed by a file store in a temp dir.
func writeConfig(t *testing.T, storeKind string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "okinoko.yaml")
	data := fmt.Sprintf(`admins: ['hive:admin']
membership:
  owners:
    1: hive:m1
    2: hive:m1
    3: hive:m2
store:
  kind: %s
  path: %s
log_level: error
`, storeKind, filepath.Join(dir, "state.db"))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return strings.TrimSpace(out.String()), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func at(ts int64) string { return fmt.Sprint(ts) }

// =============================================================================
// Commands
// =============================================================================

func TestVersion(t *testing.T) {
	assert.Equal(t, "okinoko-vote version "+Version, mustRun(t, "version"))
}

func TestActions(t *testing.T) {
	out := mustRun(t, "actions")
	assert.Equal(t, contract.Actions(), strings.Split(out, "\n"))
}

func TestCallRequiresConfig(t *testing.T) {
	_, err := run(t, "call", "proposal_count")
	assert.ErrorContains(t, err, "--config is required")
}

func TestCallLifecycleOnFileStore(t *testing.T) {
	cfg := writeConfig(t, config.StoreFile)
	call := func(action, payload, caller string, ts int64) string {
		return mustRun(t, "call", action, payload, "-c", cfg, "--as", caller, "--at", at(ts))
	}

	assert.Equal(t, "deposited", call(contract.ActionDeposit, "100", "hive:admin", t0))
	assert.Equal(t, "1", call(contract.ActionProposalCreate,
		fmt.Sprintf("fund infra|%d|%d|hive:dev|40", t0, t0+100), "hive:m1", t0))
	assert.Equal(t, "voted", call(contract.ActionVote, "1|1", "hive:m1", t0+10))
	assert.Equal(t, "voted", call(contract.ActionVote, "1|0", "hive:m2", t0+20))
	assert.Equal(t, "passed", call(contract.ActionProposalTally, "1", "hive:admin", t0+100))
	assert.Equal(t, "queued", call(contract.ActionProposalQueue, "1", "hive:admin", t0+100))
	assert.Equal(t, "executed", call(contract.ActionProposalExecute, "1", "hive:admin", t0+101))

	assert.Equal(t, "1", call(contract.ActionProposalCount, "", "", t0+200))
	assert.Equal(t, "2", call(contract.ActionBalanceCheck, "hive:m1", "", t0+200))
	assert.Equal(t, "false", call(contract.ActionCanVote, "hive:nobody", "", t0+200))
}

func TestCallReportsKind(t *testing.T) {
	cfg := writeConfig(t, config.StoreSQLite)

	_, err := run(t, "call", contract.ActionProposalQueue, "7", "-c", cfg, "--as", "hive:m1")
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrNotFound)
	assert.Contains(t, err.Error(), "(NotFound)")

	_, err = run(t, "call", contract.ActionDeposit, "1", "-c", cfg, "--at", "someday")
	assert.ErrorIs(t, err, contract.ErrInvalidInput)

	_, err = run(t, "call", "nope", "-c", cfg)
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

func TestServeRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admins: []\n"), 0o644))
	_, err := run(t, "serve", "-c", path)
	assert.ErrorIs(t, err, contract.ErrInvalidConfig)
}

// =============================================================================
// Wiring
// =============================================================================

func TestBuildNodeSQLite(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, config.StoreSQLite))
	require.NoError(t, err)
	cfg.QueueDelay = 0

	n, err := buildNode(context.Background(), cfg, slogt.New(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, n.Close()) })

	ok, err := n.Engine.IsAdmin(context.Background(), "hive:admin")
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := testutil.GatherAndCount(n.Registry, "okinoko_vote_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Empty(t, n.Events.Events())
}

func TestStaticBalancesOverrideOwners(t *testing.T) {
	cfg, err := config.Parse([]byte(`
admins: ['hive:admin']
membership:
  owners:
    1: hive:m1
  balances:
    hive:m1: 5
    hive:m3: 1
`))
	require.NoError(t, err)

	n := &node{}
	m, err := openMembership(context.Background(), n, cfg)
	require.NoError(t, err)

	b, err := m.BalanceOf(context.Background(), "hive:m1")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), b)
	owner, err := m.OwnerOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "hive:m1", owner.String())
}

func TestNodeCloseOrder(t *testing.T) {
	var order []int
	n := &node{}
	for i := range 3 {
		n.onClose(func() error {
			order = append(order, i)
			return nil
		})
	}
	n.onClose(func() error { return fmt.Errorf("boom") })
	assert.ErrorContains(t, n.Close(), "boom")
	assert.Equal(t, []int{2, 1, 0}, order)
	assert.NoError(t, n.Close(), "closers run once")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.True(t, newLogger(&buf, "bogus").Enabled(context.Background(), slog.LevelInfo))
}
