// Package store defines the Store interface, configuration, and standard
// errors for persisting versioned record snapshots. Backends live under
// internal/; the SQLite backend is exposed through pkg/sqlite.
package store

import (
	"errors"
	"time"

	"github.com/mesh-intelligence/verso/pkg/vers"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed, returning a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// Store lifecycle and operation errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrUnknownKind     = errors.New("kind is not registered")
	ErrDuplicateKind   = errors.New("kind is already registered")
	ErrNotFound        = errors.New("snapshot not found")
	ErrNilChain        = errors.New("chain must not be nil")
)

// Snapshot is one persisted record state, tagged with the schema version it
// was written at.
type Snapshot struct {
	ID        string
	Kind      string
	Version   int
	State     vers.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists versioned record snapshots. Snapshots are written at their
// chain's latest version and read back at whatever version they were stored
// at, upgraded through the chain's resolver on load. A snapshot written by
// a newer deployment of the program therefore remains loadable after the
// chain has grown, and Migrate rewrites lagging snapshots in place.
type Store interface {
	// Attach connects the store to the backend described by config,
	// creating the data directory if needed. Returns ErrAlreadyAttached
	// if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, operations return ErrStoreDetached.
	Detach() error

	// Register associates a kind name with the chain its snapshots are
	// declared under. Returns ErrDuplicateKind if the kind is taken.
	Register(kind string, chain *vers.Chain) error

	// Save persists the record's current state under the given kind.
	// When id is empty a new UUID v7 is generated. Returns the ID used.
	// The previous snapshot, if any, is preserved in history.
	Save(kind, id string, record *vers.Record) (string, error)

	// Load reads the snapshot with the given ID and returns it as a
	// record at the chain's latest version, upgrading the stored state
	// if it was written at an older version.
	// Returns ErrNotFound if no snapshot exists with that ID.
	Load(kind, id string) (*vers.Record, error)

	// List returns all snapshots of the kind, most recently updated
	// first, without upgrading their stored state.
	List(kind string) ([]Snapshot, error)

	// Delete removes the snapshot with the given ID.
	// Returns ErrNotFound if no snapshot exists with that ID.
	Delete(kind, id string) error

	// Migrate rewrites every snapshot of the kind stored at a version
	// older than the chain's latest, returning the number rewritten.
	Migrate(kind string) (int, error)
}
