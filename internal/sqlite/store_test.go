package sqlite

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/verso/pkg/store"
	"github.com/mesh-intelligence/verso/pkg/vers"
)

// intValue canonicalizes JSON numbers back to int so that stored and live
// values compare equal after a round trip through the database.
func intValue(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return nil, fmt.Errorf("value %v is not a number", v)
	}
}

// taskChain builds a two-version chain: v1 has a title, v2 adds a priority.
func taskChain(t *testing.T) *vers.Chain {
	t.Helper()
	chain, err := vers.NewChain(
		vers.VersionDef{Attributes: []vers.Attribute{
			{Name: "title", Required: true},
		}},
		vers.VersionDef{
			Attributes: []vers.Attribute{
				{Name: "priority", Default: 1, Validate: intValue},
			},
			Upgraders: []vers.Upgrader{{Fn: func(state vers.State) (vers.State, error) {
				state["priority"] = 1
				return state, nil
			}}},
		},
	)
	require.NoError(t, err)
	return chain
}

// newTestStore returns an attached store with the task chain registered.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Register("task", taskChain(t)))
	require.NoError(t, s.Attach(store.Config{
		Backend: store.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { _ = s.Detach() })
	return s
}

func TestStoreAttachDetachLifecycle(t *testing.T) {
	s := NewStore()
	dir := t.TempDir()
	cfg := store.Config{Backend: store.BackendSQLite, DataDir: dir}

	require.NoError(t, s.Attach(cfg))
	assert.ErrorIs(t, s.Attach(cfg), store.ErrAlreadyAttached)

	require.NoError(t, s.Detach())
	require.NoError(t, s.Detach(), "detach is idempotent")

	_, err := s.Load("task", "whatever")
	assert.ErrorIs(t, err, store.ErrStoreDetached)
}

func TestStoreAttachRejectsBadConfig(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Attach(store.Config{}), store.ErrBackendEmpty)
	assert.ErrorIs(t, s.Attach(store.Config{Backend: "redis"}), store.ErrBackendUnknown)
}

func TestStoreRegister(t *testing.T) {
	s := NewStore()
	chain := taskChain(t)

	require.NoError(t, s.Register("task", chain))
	assert.ErrorIs(t, s.Register("task", chain), store.ErrDuplicateKind)
	assert.ErrorIs(t, s.Register("other", nil), store.ErrNilChain)
}

func TestStoreUnknownKind(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save("ghost", "", nil)
	assert.ErrorIs(t, err, store.ErrUnknownKind)
	_, err = s.Load("ghost", "id")
	assert.ErrorIs(t, err, store.ErrUnknownKind)
	_, err = s.List("ghost")
	assert.ErrorIs(t, err, store.ErrUnknownKind)
	assert.ErrorIs(t, s.Delete("ghost", "id"), store.ErrUnknownKind)
	_, err = s.Migrate("ghost")
	assert.ErrorIs(t, err, store.ErrUnknownKind)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	chain := s.chains["task"]

	rec, err := vers.NewRecord(chain, map[string]any{"title": "write docs", "priority": 3})
	require.NoError(t, err)

	id, err := s.Save("task", "", rec)
	require.NoError(t, err)
	require.NotEmpty(t, id, "an ID is generated when none is supplied")

	loaded, err := s.Load("task", id)
	require.NoError(t, err)

	title, err := loaded.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "write docs", title)

	priority, err := loaded.Get("priority")
	require.NoError(t, err)
	assert.Equal(t, 3, priority)
}

func TestStoreLoadNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("task", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreSaveSupersedesAndKeepsHistory(t *testing.T) {
	s := newTestStore(t)
	chain := s.chains["task"]

	rec, err := vers.NewRecord(chain, map[string]any{"title": "one"})
	require.NoError(t, err)
	id, err := s.Save("task", "", rec)
	require.NoError(t, err)

	require.NoError(t, rec.Set("title", "two"))
	_, err = s.Save("task", id, rec)
	require.NoError(t, err)

	loaded, err := s.Load("task", id)
	require.NoError(t, err)
	title, err := loaded.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "two", title)

	snaps, err := s.List("task")
	require.NoError(t, err)
	require.Len(t, snaps, 1, "supersede must not add rows")

	var count int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM record_history WHERE record_id = ?`, id,
	).Scan(&count))
	assert.Equal(t, 1, count, "the superseded snapshot is kept in history")
}

func TestStoreLoadUpgradesOldSnapshot(t *testing.T) {
	s := newTestStore(t)

	// Write a version 1 snapshot directly, as an older deployment would
	// have left it.
	id := seedOldSnapshot(t, s, "task", vers.State{"title": "legacy"})

	loaded, err := s.Load("task", id)
	require.NoError(t, err)

	priority, err := loaded.Get("priority")
	require.NoError(t, err)
	assert.Equal(t, 1, priority, "the upgrade transform supplies the new field")

	// Loading does not rewrite the stored row.
	snaps, err := s.List("task")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].Version)
}

func TestStoreMigrate(t *testing.T) {
	s := newTestStore(t)
	chain := s.chains["task"]

	seedOldSnapshot(t, s, "task", vers.State{"title": "a"})
	seedOldSnapshot(t, s, "task", vers.State{"title": "b"})

	rec, err := vers.NewRecord(chain, map[string]any{"title": "current"})
	require.NoError(t, err)
	_, err = s.Save("task", "", rec)
	require.NoError(t, err)

	migrated, err := s.Migrate("task")
	require.NoError(t, err)
	assert.Equal(t, 2, migrated, "only lagging snapshots are rewritten")

	snaps, err := s.List("task")
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	for _, snap := range snaps {
		assert.Equal(t, chain.Latest(), snap.Version)
	}

	again, err := s.Migrate("task")
	require.NoError(t, err)
	assert.Zero(t, again, "a second migration finds nothing to do")
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore(t)
	chain := s.chains["task"]

	rec, err := vers.NewRecord(chain, map[string]any{"title": "gone"})
	require.NoError(t, err)
	id, err := s.Save("task", "", rec)
	require.NoError(t, err)

	require.NoError(t, s.Delete("task", id))
	_, err = s.Load("task", id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.Delete("task", id), store.ErrNotFound)
}

func TestStorePersistsAcrossAttachCycles(t *testing.T) {
	dir := t.TempDir()
	cfg := store.Config{Backend: store.BackendSQLite, DataDir: dir}

	s := NewStore()
	require.NoError(t, s.Register("task", taskChain(t)))
	require.NoError(t, s.Attach(cfg))

	rec, err := vers.NewRecord(s.chains["task"], map[string]any{"title": "durable"})
	require.NoError(t, err)
	id, err := s.Save("task", "", rec)
	require.NoError(t, err)
	require.NoError(t, s.Detach())

	reopened := NewStore()
	require.NoError(t, reopened.Register("task", taskChain(t)))
	require.NoError(t, reopened.Attach(cfg))
	defer reopened.Detach()

	loaded, err := reopened.Load("task", id)
	require.NoError(t, err)
	title, err := loaded.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "durable", title)
}

// seedOldSnapshot inserts a version 1 row directly into the records table,
// bypassing Save, to simulate data written by an older deployment.
func seedOldSnapshot(t *testing.T, s *Store, kind string, state vers.State) string {
	t.Helper()
	payload, err := json.Marshal(state)
	require.NoError(t, err)

	id := fmt.Sprintf("seed-%d", time.Now().UnixNano())
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.Exec(
		`INSERT INTO records (record_id, kind, version, state, created_at, updated_at)
         VALUES (?, ?, 1, ?, ?, ?)`,
		id, kind, string(payload), now, now,
	)
	require.NoError(t, err)
	return id
}
