// Package sqlite implements the SQLite backend for the verso snapshot
// store. The database is the source of truth: snapshots persist across
// Attach/Detach cycles and are upgraded through their chain's resolver on
// load rather than in place.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/verso/pkg/store"
	"github.com/mesh-intelligence/verso/pkg/vers"
)

// dbFileName is the database file created inside the data directory.
const dbFileName = "verso.db"

// Store implements store.Store using SQLite.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   store.Config
	db       *sql.DB
	chains   map[string]*vers.Chain
}

// NewStore creates a new SQLite store instance. The store is not attached;
// call Attach with a Config to initialize.
func NewStore() *Store {
	return &Store{
		chains: make(map[string]*vers.Chain),
	}
}

// Attach initializes the store with the given configuration. Creates
// DataDir if it does not exist and ensures the schema is present.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config store.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return store.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	for _, ddl := range allDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("initialize schema: %w", err)
		}
	}

	s.db = db
	s.config = config
	s.attached = true
	return nil
}

// Detach releases the database handle. Idempotent: detaching a detached
// store succeeds.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false
	err := s.db.Close()
	s.db = nil
	return err
}

// Register associates a kind name with its chain. Registration is allowed
// before or after Attach; Save/Load/List/Delete/Migrate require both an
// attached store and a registered kind.
func (s *Store) Register(kind string, chain *vers.Chain) error {
	if chain == nil {
		return store.ErrNilChain
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chains[kind]; ok {
		return fmt.Errorf("%w: %q", store.ErrDuplicateKind, kind)
	}
	s.chains[kind] = chain
	return nil
}

// Save persists the record's current state under the given kind. When id
// is empty a new UUID v7 is generated; the ID used is returned. An
// existing snapshot is superseded and its previous row kept in history.
func (s *Store) Save(kind, id string, record *vers.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return "", store.ErrStoreDetached
	}
	if _, ok := s.chains[kind]; !ok {
		return "", fmt.Errorf("%w: %q", store.ErrUnknownKind, kind)
	}

	version, state := record.State()
	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	if id == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		id = u.String()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	return id, s.upsert(kind, id, version, string(payload), now)
}

// upsert inserts a fresh snapshot row or supersedes an existing one,
// copying the superseded row into record_history first.
func (s *Store) upsert(kind, id string, version int, payload, now string) error {
	var oldVersion int
	var oldState, oldUpdated string
	err := s.db.QueryRow(
		`SELECT version, state, updated_at FROM records WHERE record_id = ? AND kind = ?`,
		id, kind,
	).Scan(&oldVersion, &oldState, &oldUpdated)

	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(
			`INSERT INTO records (record_id, kind, version, state, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			id, kind, version, payload, now, now,
		)
		return err
	case err != nil:
		return err
	}

	historyID, err := uuid.NewV7()
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(
		`INSERT INTO record_history (history_id, record_id, kind, version, state, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		historyID.String(), id, kind, oldVersion, oldState, oldUpdated,
	); err != nil {
		return err
	}

	_, err = s.db.Exec(
		`UPDATE records SET version = ?, state = ?, updated_at = ? WHERE record_id = ? AND kind = ?`,
		version, payload, now, id, kind,
	)
	return err
}

// Load reads the snapshot with the given ID and returns a record at the
// chain's latest version, upgrading the stored state when it was written
// at an older version.
func (s *Store) Load(kind, id string) (*vers.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, store.ErrStoreDetached
	}
	chain, ok := s.chains[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownKind, kind)
	}

	var version int
	var payload string
	err := s.db.QueryRow(
		`SELECT version, state FROM records WHERE record_id = ? AND kind = ?`,
		id, kind,
	).Scan(&version, &payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var state vers.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return vers.FromState(chain, version, state)
}

// List returns all snapshots of the kind, most recently updated first. The
// stored state is returned as written, without upgrading.
func (s *Store) List(kind string) ([]store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, store.ErrStoreDetached
	}
	if _, ok := s.chains[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownKind, kind)
	}

	rows, err := s.db.Query(
		`SELECT record_id, version, state, created_at, updated_at
         FROM records WHERE kind = ? ORDER BY updated_at DESC`,
		kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]store.Snapshot, 0)
	for rows.Next() {
		var snap store.Snapshot
		var payload, created, updated string
		if err := rows.Scan(&snap.ID, &snap.Version, &payload, &created, &updated); err != nil {
			return nil, err
		}
		snap.Kind = kind
		if err := json.Unmarshal([]byte(payload), &snap.State); err != nil {
			return nil, fmt.Errorf("decode state of %q: %w", snap.ID, err)
		}
		if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, err
		}
		if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// Delete removes the snapshot with the given ID and its history rows.
func (s *Store) Delete(kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return store.ErrStoreDetached
	}
	if _, ok := s.chains[kind]; !ok {
		return fmt.Errorf("%w: %q", store.ErrUnknownKind, kind)
	}

	res, err := s.db.Exec(`DELETE FROM records WHERE record_id = ? AND kind = ?`, id, kind)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", store.ErrNotFound, id)
	}
	_, err = s.db.Exec(`DELETE FROM record_history WHERE record_id = ? AND kind = ?`, id, kind)
	return err
}

// Migrate rewrites every snapshot of the kind stored at a version older
// than the chain's latest. Each lagging snapshot is loaded (upgrading it
// through the resolver) and saved back at the latest version, with the old
// row preserved in history. Returns the number of snapshots rewritten.
func (s *Store) Migrate(kind string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return 0, store.ErrStoreDetached
	}
	chain, ok := s.chains[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", store.ErrUnknownKind, kind)
	}

	rows, err := s.db.Query(
		`SELECT record_id, version, state FROM records WHERE kind = ? AND version < ?`,
		kind, chain.Latest(),
	)
	if err != nil {
		return 0, err
	}

	type lagging struct {
		id      string
		version int
		payload string
	}
	var pending []lagging
	for rows.Next() {
		var l lagging
		if err := rows.Scan(&l.id, &l.version, &l.payload); err != nil {
			rows.Close()
			return 0, err
		}
		pending = append(pending, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	migrated := 0
	for _, l := range pending {
		var state vers.State
		if err := json.Unmarshal([]byte(l.payload), &state); err != nil {
			return migrated, fmt.Errorf("decode state of %q: %w", l.id, err)
		}
		record, err := vers.FromState(chain, l.version, state)
		if err != nil {
			return migrated, fmt.Errorf("upgrade %q: %w", l.id, err)
		}
		version, latest := record.State()
		payload, err := json.Marshal(latest)
		if err != nil {
			return migrated, fmt.Errorf("encode state of %q: %w", l.id, err)
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		if err := s.upsert(kind, l.id, version, string(payload), now); err != nil {
			return migrated, err
		}
		migrated++
	}
	return migrated, nil
}
