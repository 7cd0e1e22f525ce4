// package repositories provides persistence layer implementations for all model types.
//
// Each repository takes an open *sql.DB with migrations applied and is safe for concurrent use.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// notFound converts [sql.ErrNoRows] into [ErrNotFound] with context.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
