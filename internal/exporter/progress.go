// Package exporter derives scan progress metrics from raw pool counters
// and renders pool and scan statistics as InfluxDB line protocol records.
package exporter

import (
	"time"

	"github.com/zfskit/zpool-influxdb/internal/models"
)

// Options control the two places where the wire format deliberately
// reproduces defects of the historical exporter for dashboard
// compatibility. Both default to the legacy behavior.
type Options struct {
	// FixRemainingTime computes the in-progress remaining time as
	// (to_examine - examined) / rate. The legacy formula divides only the
	// examined count by the rate before subtracting, mixing units.
	FixRemainingTime bool

	// FixReadOps emits the real read operation counter in the pool line's
	// read_ops field. The legacy line reuses the read bytes counter there.
	FixReadOps bool
}

// ScanProgress bundles the derived scan metrics together with the raw
// counters the scan line emits.
type ScanProgress struct {
	FuncLabel  string
	StateLabel string

	PctDone       float64
	Rate          uint64 // bytes per second, always >= 1
	RemainingTime uint64 // seconds, 0 for terminal states

	Examined     uint64 // floored to 1 when the raw counter is zero
	PassExamined uint64 // floored to 1 when the raw counter is zero

	StartTime      int64
	EndTime        int64
	PauseTime      int64
	PausedDuration int64

	Errors    uint64
	Processed uint64
	ToExamine uint64
	ToProcess uint64
}

// DeriveScanProgress turns a raw scan counter snapshot into the derived
// metrics of the scan line. The second return value is false when no scan
// record should be emitted: the snapshot is nil, or its state or function
// is outside the known enum range (a malformed record is skipped
// silently, never reported as an error).
//
// Every division in here is guarded: a zero denominator is remapped to 1
// first, so idle or freshly created pools produce degenerate but defined
// values (0% done, rate 1) instead of faulting. This is a deliberate
// approximation policy.
func DeriveScanProgress(raw *models.ScanStats, now time.Time, opts Options) (*ScanProgress, bool) {
	if raw == nil || !raw.State.Known() || !raw.Func.Known() {
		return nil, false
	}

	p := &ScanProgress{
		FuncLabel:      raw.Func.Label(),
		StateLabel:     raw.State.Label(),
		StartTime:      raw.StartTime,
		EndTime:        raw.EndTime,
		PauseTime:      raw.PauseTime,
		PausedDuration: raw.PausedDuration,
		Errors:         raw.Errors,
		Processed:      raw.Processed,
		ToExamine:      raw.ToExamine,
		ToProcess:      raw.ToProcess,
	}

	// overall progress
	p.Examined = floorOne(raw.Examined)
	if raw.ToExamine > 0 {
		p.PctDone = 100.0 * float64(p.Examined) / float64(raw.ToExamine)
	}

	// calculations for the current pass
	p.PassExamined = floorOne(raw.PassExamined)

	if raw.State == models.ScanStateScanning {
		elapsed := now.Unix() - raw.PassStartTime - raw.PausedDuration
		if elapsed <= 0 {
			elapsed = 1
		}
		p.Rate = floorOne(p.PassExamined / uint64(elapsed))

		if opts.FixRemainingTime {
			if raw.ToExamine > p.Examined {
				p.RemainingTime = (raw.ToExamine - p.Examined) / p.Rate
			}
		} else {
			// historical formula: the division binds to examined alone
			p.RemainingTime = raw.ToExamine - p.Examined/p.Rate
		}
	} else {
		elapsed := raw.EndTime - raw.PassStartTime - raw.PausedDuration
		if elapsed <= 0 {
			elapsed = 1
		}
		p.Rate = p.PassExamined / uint64(elapsed)
		p.RemainingTime = 0
	}

	p.Rate = floorOne(p.Rate)

	return p, true
}

func floorOne(v uint64) uint64 {
	if v == 0 {
		return 1
	}
	return v
}
