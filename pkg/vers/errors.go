package vers

import (
	"errors"
	"fmt"
)

// Chain construction errors. These surface from NewChain: a malformed
// declaration is a programming error and is rejected eagerly, never
// deferred to resolution time.
var (
	ErrEmptyChain          = errors.New("chain must declare at least one version")
	ErrInvalidAttribute    = errors.New("invalid attribute")
	ErrDuplicateAttribute  = errors.New("duplicate attribute")
	ErrUnknownAttribute    = errors.New("unknown attribute")
	ErrInvalidUpgrader     = errors.New("invalid upgrader")
	ErrDuplicateUpgrader   = errors.New("duplicate upgrader source version")
	ErrMissingUpgrader     = errors.New("missing upgrader from previous version")
	ErrInvalidDowngrader   = errors.New("invalid downgrader")
	ErrDuplicateDowngrader = errors.New("duplicate downgrader target version")
	ErrNilTransform        = errors.New("transform function must not be nil")
)

// Record and resolution errors.
var (
	ErrMissingField       = errors.New("missing required field")
	ErrValidation         = errors.New("field validation failed")
	ErrUnknownVersion     = errors.New("version not present in chain")
	ErrNoPath             = errors.New("no upgrade path")
	ErrUpgradeTransform   = errors.New("upgrade transform failed")
	ErrDowngradeTransform = errors.New("downgrade transform failed")
	ErrNoDowngrade        = errors.New("no direct downgrade edge")
	ErrFieldNotPresent    = errors.New("field not present")
	ErrReadOnly           = errors.New("view is read-only")
)

// wrapName attaches a field or attribute name to a sentinel error.
func wrapName(sentinel error, name string) error {
	return fmt.Errorf("%w: %q", sentinel, name)
}

// wrapMsg attaches free-form detail to a sentinel error.
func wrapMsg(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
