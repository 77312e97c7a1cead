// Package sqlite provides the public API for the SQLite snapshot store.
// It exposes the factory function while keeping implementation details
// internal.
package sqlite

import (
	"github.com/mesh-intelligence/verso/internal/sqlite"
	"github.com/mesh-intelligence/verso/pkg/store"
)

// NewStore creates a new SQLite store instance.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	st := sqlite.NewStore()
//	err := st.Attach(store.Config{
//	    Backend: store.BackendSQLite,
//	    DataDir: ".verso-db",
//	})
//	defer st.Detach()
func NewStore() store.Store {
	return sqlite.NewStore()
}
