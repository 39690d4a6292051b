package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/zfskit/zpool-influxdb/internal/influx"
	"github.com/zfskit/zpool-influxdb/internal/models"
)

// Measurement names of the two record kinds.
const (
	PoolMeasurement = "zpool_stats"
	ScanMeasurement = "zpool_scan_stats"
)

// FormatPoolLine renders one pool-measurement line. The escaped pool name
// is supplied by the caller and embedded verbatim; the formatter never
// re-escapes. Field order and key names are part of the wire contract and
// must not change — existing dashboards key on them byte for byte.
//
// The state field duplicates the state tag on purpose, and read_ops
// carries the read bytes counter unless Options.FixReadOps is set (the
// historical exporter shipped that defect and consumers built on it).
func FormatPoolLine(stats *models.PoolStats, escapedName string, ts time.Time, opts Options) string {
	readOps := stats.Vdev.ReadBytes
	if opts.FixReadOps {
		readOps = stats.Vdev.ReadOps
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s,name=%s,state=%s ", PoolMeasurement, escapedName, stats.Health)
	fmt.Fprintf(&b, "alloc=%di,free=%di,size=%di,state=\"%s\","+
		"read_bytes=%di,read_errors=%di,read_ops=%di,"+
		"write_bytes=%di,write_errors=%di,write_ops=%di,"+
		"checksum_errors=%di,fragmentation=%di",
		stats.Alloc,
		stats.Size-stats.Alloc,
		stats.Size,
		stats.Health,
		stats.Vdev.ReadBytes,
		stats.Vdev.ReadErrors,
		readOps,
		stats.Vdev.WriteBytes,
		stats.Vdev.WriteErrors,
		stats.Vdev.WriteOps,
		stats.Vdev.ChecksumErrors,
		stats.Fragmentation)
	fmt.Fprintf(&b, " %s\n", influx.Timestamp(ts))
	return b.String()
}

// FormatScanLine renders one scan-measurement line from derived scan
// progress. Fields are emitted in alphabetical key order, matching the
// historical wire format exactly.
func FormatScanLine(p *ScanProgress, escapedName string, ts time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s,function=%s,pool=%s,state=%s ",
		ScanMeasurement, p.FuncLabel, escapedName, p.StateLabel)
	fmt.Fprintf(&b, "end_ts=%di,errors=%di,examined=%di,function=\"%s\","+
		"pass_examined=%di,pause_ts=%di,paused_t=%di,"+
		"pct_done=%.2f,processed=%di,rate=%di,"+
		"remaining_t=%di,start_ts=%di,state=\"%s\","+
		"to_examine=%di,to_process=%di",
		p.EndTime,
		p.Errors,
		p.Examined,
		p.FuncLabel,
		p.PassExamined,
		p.PauseTime,
		p.PausedDuration,
		p.PctDone,
		p.Processed,
		p.Rate,
		p.RemainingTime,
		p.StartTime,
		p.StateLabel,
		p.ToExamine,
		p.ToProcess)
	fmt.Fprintf(&b, " %s\n", influx.Timestamp(ts))
	return b.String()
}
