// Package vers implements in-memory object versioning: a record declared
// under a chain of schema versions can be read and written at the latest
// version, deserialized from any older version by resolving and applying a
// sequence of upgrade transforms, and projected to an older version through
// a live, read-only view backed by a single downgrade transform.
//
// A Chain is immutable once built and safe for concurrent use. A Record
// guards its values with an internal lock so that view recomputation always
// observes a consistent snapshot; callers that mutate a record from several
// goroutines must still serialize their own read-modify-write sequences.
package vers
