package deploy

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidDatabaseType is returned when a db unit names an engine other
	// than postgres or mysql.
	ErrInvalidDatabaseType = errors.New("invalid database type")

	// ErrNoImage is returned when an app has no matching tag in the image
	// catalog.
	ErrNoImage = errors.New("no image built for app")

	// ErrNoRollbackTarget is returned when fewer than two snapshots exist for
	// the project.
	ErrNoRollbackTarget = errors.New("no previous deploy to roll back to")
)

// UnitError wraps an error with the unit it belongs to.
type UnitError struct {
	Unit string
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s: %v", e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// NewUnitError creates a new UnitError.
func NewUnitError(unit string, err error) *UnitError {
	return &UnitError{Unit: unit, Err: err}
}
