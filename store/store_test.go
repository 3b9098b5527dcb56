package store

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

// binary keys like the engine writes them: prefix byte + little endian id
var (
	keyA = string([]byte{0x10, 1, 0, 0, 0, 0, 0, 0, 0})
	keyB = string([]byte{0x20, 1, 0, 0, 0, 0, 0, 0, 0, 'h', 'i', 'v', 'e'})
)

func exerciseState(t *testing.T, s State) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Get(ctx, keyA)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set(ctx, keyA, "one"))
	got, err = s.Get(ctx, keyA)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "one", *got)

	require.NoError(t, s.Set(ctx, keyA, "two\x00bytes"))
	got, err = s.Get(ctx, keyA)
	require.NoError(t, err)
	assert.Equal(t, "two\x00bytes", *got)

	require.NoError(t, Apply(ctx, s, []Mutation{
		{Key: keyB, Value: strptr("vote")},
		{Key: keyA},
	}))
	got, err = s.Get(ctx, keyA)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = s.Get(ctx, keyB)
	require.NoError(t, err)
	assert.Equal(t, "vote", *got)

	require.NoError(t, s.Delete(ctx, keyB))
	got, err = s.Get(ctx, keyB)
	require.NoError(t, err)
	assert.Nil(t, got)

	// empty batches are a no-op
	require.NoError(t, Apply(ctx, s, nil))
}

func TestMemoryState(t *testing.T) {
	m := NewMemoryState()
	exerciseState(t, m)
	assert.Equal(t, 0, m.Len())
}

func TestFileState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f, err := OpenFileState(path)
	require.NoError(t, err)
	exerciseState(t, f)

	ctx := context.Background()
	require.NoError(t, f.Set(ctx, keyB, "persisted"))

	reopened, err := OpenFileState(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, keyB)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "persisted", *got)
}

func TestFileStateRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := OpenFileState(path)
	assert.Error(t, err)
}

func TestSQLiteState(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseState(t, s)
}

func TestPostgresStateQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS okinoko_kv (k BYTEA PRIMARY KEY, v BYTEA NOT NULL)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLState(ctx, db, DialectPostgres)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT v FROM okinoko_kv WHERE k = $1")).
		WithArgs([]byte(keyA)).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow([]byte("stored")))
	got, err := s.Get(ctx, keyA)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "stored", *got)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT v FROM okinoko_kv WHERE k = $1")).
		WithArgs([]byte(keyB)).
		WillReturnRows(sqlmock.NewRows([]string{"v"}))
	got, err = s.Get(ctx, keyB)
	require.NoError(t, err)
	assert.Nil(t, got)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO okinoko_kv (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v")).
		WithArgs([]byte(keyB), []byte("vote")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM okinoko_kv WHERE k = $1")).
		WithArgs([]byte(keyA)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, s.Apply(ctx, []Mutation{{Key: keyB, Value: strptr("vote")}, {Key: keyA}}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplyRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLState(ctx, db, DialectPostgres)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO okinoko_kv").WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()
	err = s.Apply(ctx, []Mutation{{Key: keyA, Value: strptr("x")}})
	assert.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRedisState requires a running Redis at REDIS_ADDR.
func TestRedisState(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping Redis integration test: REDIS_ADDR not set")
	}
	s := NewRedisState(addr, "", 0, "okinoko_vote_test:"+t.Name()+":")
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}
	exerciseState(t, s)
}
