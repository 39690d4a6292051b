// Package zpool implements the pool stats provider: it queries the ZFS
// subsystem through the zpool command line tool and the kernel kstat
// files and turns the results into raw counter snapshots.
package zpool

import (
	"context"
	"errors"
	"fmt"

	"github.com/zfskit/zpool-influxdb/internal/models"
)

// Provider supplies raw pool statistics on demand. The primary
// implementation is CLI, which execs the zpool binary; tests substitute
// in-memory fakes.
type Provider interface {
	// Pools returns the names of all imported pools in iteration order.
	Pools(ctx context.Context) ([]string, error)

	// Stats returns a fresh capacity/health snapshot for the named pool
	// together with its raw scan counters. The scan stats are nil when no
	// scan has ever run on the pool or the scan record was unreadable;
	// this is not an error.
	Stats(ctx context.Context, pool string) (*models.PoolStats, *models.ScanStats, error)
}

// ErrorKind classifies provider failures so callers can branch on the
// condition rather than on exit codes or message text.
type ErrorKind int

const (
	// KindRefresh means the stats query itself failed (zpool exec error,
	// timeout, unreadable output).
	KindRefresh ErrorKind = iota + 1

	// KindMissingVdevTree means the pool's configuration listing did not
	// contain the expected device tree.
	KindMissingVdevTree

	// KindMissingVdevStats means the root vdev row was present but its
	// counters could not be extracted.
	KindMissingVdevStats

	// KindNotFound means the named pool does not exist.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindRefresh:
		return "stats refresh failed"
	case KindMissingVdevTree:
		return "missing vdev tree"
	case KindMissingVdevStats:
		return "missing vdev stats"
	case KindNotFound:
		return "pool not found"
	default:
		return "unknown error"
	}
}

// Error is a provider failure tagged with its kind and the pool it
// concerns.
type Error struct {
	Kind ErrorKind
	Pool string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pool %q: %s: %v", e.Pool, e.Kind, e.Err)
	}
	return fmt.Sprintf("pool %q: %s", e.Pool, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind from err, unwrapping as needed.
// It returns 0 when err carries no provider kind.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
