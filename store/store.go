// Package store is the persistence layer. Every write runs inside a single
// transaction and either commits whole or rolls back whole; reads run
// without one. Callers receive ErrNotFound for missing rows and wrapped
// driver errors for everything else.
package store

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a lookup matched no row.
var ErrNotFound = errors.New("record not found")

func wrapPersist(op string, err error) error {
	return fmt.Errorf("persist %s: %w", op, err)
}
