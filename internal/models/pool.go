// Package models defines the core data structures for the zpool-influxdb
// exporter: raw pool and scan counter snapshots as supplied by the pool
// stats provider, and the application configuration.
package models

// VdevStats holds the cumulative I/O and error counters of a pool's root
// vdev. All counters are monotonically increasing since pool import.
type VdevStats struct {
	ReadBytes      uint64
	WriteBytes     uint64
	ReadOps        uint64
	WriteOps       uint64
	ReadErrors     uint64
	WriteErrors    uint64
	ChecksumErrors uint64
}

// PoolStats is a point-in-time snapshot of one pool's capacity and health.
// A snapshot is produced fresh on every poll and has no identity beyond it;
// the collector owns it for the duration of a single pass.
type PoolStats struct {
	Name          string
	Health        string // provider-defined label, e.g. ONLINE, DEGRADED, FAULTED
	Size          uint64 // total bytes
	Alloc         uint64 // allocated bytes
	Fragmentation uint64 // percent
	Vdev          VdevStats
}

// ScanFunc identifies the kind of background scan running on a pool.
// The raw values mirror the order of the native pool_scan_func_t enum so
// that a provider reading binary scan stats can pass them through directly.
type ScanFunc uint64

const (
	ScanFuncNone ScanFunc = iota
	ScanFuncScrub
	ScanFuncResilver
	ScanFuncRebuild

	scanFuncCount
)

// Known reports whether f is one of the recognized scan functions.
// Snapshots carrying an unknown function are unusable and must be skipped.
func (f ScanFunc) Known() bool {
	return f < scanFuncCount
}

// Label returns the human-readable function name used in metric output.
func (f ScanFunc) Label() string {
	switch f {
	case ScanFuncNone:
		return "none_requested"
	case ScanFuncScrub:
		return "scrub"
	case ScanFuncResilver:
		return "resilver"
	case ScanFuncRebuild:
		return "rebuild"
	default:
		// recognized by the platform but not individually labeled
		return "scan"
	}
}

// ScanState identifies the lifecycle state of a pool scan.
// Raw values mirror the native dsl_scan_state_t enum.
type ScanState uint64

const (
	ScanStateNone ScanState = iota
	ScanStateScanning
	ScanStateFinished
	ScanStateCanceled

	scanStateCount
)

// Known reports whether s is one of the recognized scan states.
func (s ScanState) Known() bool {
	return s < scanStateCount
}

// Label returns the human-readable state name used in metric output.
func (s ScanState) Label() string {
	switch s {
	case ScanStateNone:
		return "none"
	case ScanStateScanning:
		return "scanning"
	case ScanStateFinished:
		return "finished"
	case ScanStateCanceled:
		return "canceled"
	default:
		return ""
	}
}

// ScanStats carries the raw cumulative scan/resilver counters of one pool.
// A nil *ScanStats means no scan has ever run on the pool (or the scan
// record was malformed); in either case no scan metrics are emitted.
//
// Cumulative counters (Examined, ToExamine, ...) cover the scan since it
// was first started; the Pass* fields cover only the current pass, which
// restarts after every pause/resume cycle.
type ScanStats struct {
	Func  ScanFunc
	State ScanState

	StartTime     int64 // unix seconds, scan start
	EndTime       int64 // unix seconds, scan end (terminal states only)
	PassStartTime int64 // unix seconds, current pass start

	ToExamine    uint64 // bytes the scan will examine in total
	Examined     uint64 // bytes examined since scan start
	PassExamined uint64 // bytes examined in the current pass
	Processed    uint64 // bytes repaired/rewritten
	ToProcess    uint64 // bytes pending repair
	Errors       uint64

	PauseTime      int64 // unix seconds of last pause, 0 if never paused
	PausedDuration int64 // cumulative seconds spent paused in this pass
}
