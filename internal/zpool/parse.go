package zpool

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zfskit/zpool-influxdb/internal/models"
)

// ctimeLayout matches the asctime-style timestamps zpool status prints,
// e.g. "Sun Aug 24 10:00:00 2025". No zone is printed; timestamps are in
// the host's local time.
const ctimeLayout = "Mon Jan _2 15:04:05 2006"

// parseListOutput extracts one pool's row from
// `zpool list -Hp -o name,size,alloc,frag,health` output.
func parseListOutput(bs []byte, pool string) (*models.PoolStats, error) {
	/*
	   # zpool list -Hp -o name,size,alloc,frag,health tank
	   tank	21367462298	9051643576	33	ONLINE
	*/
	sc := bufio.NewScanner(bytes.NewReader(bs))

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// -H output is tab-separated; pool names may contain spaces
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			return nil, fmt.Errorf("unexpected zpool list columns: %d (line '%s')", len(fields), line)
		}
		if fields[0] != pool {
			continue
		}

		stats := &models.PoolStats{
			Name:   pool,
			Health: fields[4],
		}
		var err error
		if stats.Size, err = strconv.ParseUint(fields[1], 10, 64); err != nil {
			return nil, fmt.Errorf("bad size %q: %w", fields[1], err)
		}
		if stats.Alloc, err = strconv.ParseUint(fields[2], 10, 64); err != nil {
			return nil, fmt.Errorf("bad alloc %q: %w", fields[2], err)
		}
		// FRAG is "-" until the first spacemap histogram exists
		if fields[3] != "-" {
			if stats.Fragmentation, err = strconv.ParseUint(fields[3], 10, 64); err != nil {
				return nil, fmt.Errorf("bad frag %q: %w", fields[3], err)
			}
		}
		return stats, nil
	}

	return nil, fmt.Errorf("pool %q not present in zpool list output", pool)
}

// parseStatusOutput reads the `zpool status <pool>` output: the root vdev
// error counters from the config table and the raw scan record from the
// scan section. The returned scan stats are nil when the pool has never
// been scanned or the scan text was not understood.
func parseStatusOutput(bs []byte, pool string, vs *models.VdevStats) (*models.ScanStats, error) {
	var scanLines []string
	var inScan, inConfig, sawConfig, sawRoot bool

	sc := bufio.NewScanner(bytes.NewReader(bs))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "scan:"):
			inScan = true
			inConfig = false
			scanLines = append(scanLines, strings.TrimSpace(strings.TrimPrefix(trimmed, "scan:")))
			continue
		case strings.HasPrefix(trimmed, "config:"):
			inScan = false
			inConfig = true
			sawConfig = true
			continue
		case strings.HasPrefix(trimmed, "pool:"),
			strings.HasPrefix(trimmed, "state:"),
			strings.HasPrefix(trimmed, "status:"),
			strings.HasPrefix(trimmed, "action:"),
			strings.HasPrefix(trimmed, "see:"),
			strings.HasPrefix(trimmed, "errors:"):
			inScan = false
			inConfig = false
			continue
		}

		if inScan && trimmed != "" {
			scanLines = append(scanLines, trimmed)
		}

		if inConfig && !sawRoot {
			if trimmed == "" || strings.HasPrefix(trimmed, "NAME") {
				continue
			}
			// first data row is the root vdev (the pool itself); match by
			// name prefix since pool names may contain spaces
			if trimmed != pool && !strings.HasPrefix(trimmed, pool+" ") && !strings.HasPrefix(trimmed, pool+"\t") {
				return nil, &Error{Kind: KindMissingVdevTree, Pool: pool,
					Err: fmt.Errorf("config table starts with %q", trimmed)}
			}
			fields := strings.Fields(strings.TrimPrefix(trimmed, pool))
			if len(fields) < 4 {
				return nil, &Error{Kind: KindMissingVdevStats, Pool: pool,
					Err: fmt.Errorf("root vdev row has %d columns after the name", len(fields))}
			}
			var err error
			if vs.ReadErrors, err = parseCount(fields[1]); err == nil {
				if vs.WriteErrors, err = parseCount(fields[2]); err == nil {
					vs.ChecksumErrors, err = parseCount(fields[3])
				}
			}
			if err != nil {
				return nil, &Error{Kind: KindMissingVdevStats, Pool: pool, Err: err}
			}
			sawRoot = true
		}
	}

	if !sawConfig {
		return nil, &Error{Kind: KindMissingVdevTree, Pool: pool,
			Err: errors.New("no config section in zpool status output")}
	}
	if !sawRoot {
		return nil, &Error{Kind: KindMissingVdevStats, Pool: pool,
			Err: errors.New("no root vdev row in zpool status output")}
	}

	return parseScanSection(scanLines, pool), nil
}

// parseScanSection reconstructs raw scan counters from the human-readable
// scan section. Counters the text does not carry stay zero; the progress
// calculator is defined for all-zero inputs, so partial reconstruction is
// safe. A scan section that is absent or not understood yields nil.
func parseScanSection(lines []string, pool string) *models.ScanStats {
	if len(lines) == 0 {
		return nil
	}
	head := lines[0]

	ss := &models.ScanStats{}
	switch {
	case strings.HasPrefix(head, "scrub"):
		ss.Func = models.ScanFuncScrub
	case strings.HasPrefix(head, "resilver"):
		ss.Func = models.ScanFuncResilver
	case strings.HasPrefix(head, "none requested"):
		return nil
	default:
		log.Debugf("Unrecognized scan line for pool %q: %s", pool, head)
		return nil
	}

	switch {
	case strings.Contains(head, "in progress since"):
		ss.State = models.ScanStateScanning
		ss.StartTime = parseCtimeAfter(head, "since ")
		ss.PassStartTime = ss.StartTime

	case strings.Contains(head, "paused since"):
		// paused scans stay in the scanning state; the pass clock stops
		ss.State = models.ScanStateScanning
		ss.PauseTime = parseCtimeAfter(head, "since ")
		for _, l := range lines[1:] {
			if strings.Contains(l, "started on") {
				ss.StartTime = parseCtimeAfter(l, "on ")
				ss.PassStartTime = ss.StartTime
			}
		}

	case strings.Contains(head, "canceled on"):
		ss.State = models.ScanStateCanceled
		ss.EndTime = parseCtimeAfter(head, "on ")

	case strings.Contains(head, "repaired"), strings.Contains(head, "resilvered"):
		// e.g. "scrub repaired 0B in 03:23:10 with 0 errors on Mon Aug 25 01:23:10 2025"
		ss.State = models.ScanStateFinished
		ss.EndTime = parseCtimeAfter(head, "on ")
		if d, ok := parseDurationAfter(head, " in "); ok && ss.EndTime > 0 {
			ss.StartTime = ss.EndTime - d
			ss.PassStartTime = ss.StartTime
		}

	default:
		log.Debugf("Unrecognized scan state for pool %q: %s", pool, head)
		return nil
	}

	for _, l := range lines {
		parseScanCounters(l, ss)
	}

	// pass counters are not broken out in the text; the current pass is
	// the only window the output describes
	ss.PassExamined = ss.Examined

	return ss
}

// parseScanCounters picks byte counters out of one scan section line.
// Both the pre-0.8 wording ("X scanned out of Y") and the current one
// ("X / Y scanned", "X / Y issued") are understood.
func parseScanCounters(line string, ss *models.ScanStats) {
	fields := strings.Fields(line)
	for i := range fields {
		fields[i] = strings.TrimSuffix(fields[i], ",")
	}

	for i, f := range fields {
		switch f {
		case "scanned":
			if i >= 3 && fields[i-2] == "/" {
				// "1.30T / 2.91T scanned"
				ss.Examined = parseSize(fields[i-3])
				ss.ToExamine = parseSize(fields[i-1])
			} else if i >= 1 {
				ss.Examined = parseSize(fields[i-1])
			}
			// "1.62T scanned out of 3.12T"
			if i+3 < len(fields) && fields[i+1] == "out" && fields[i+2] == "of" {
				ss.ToExamine = parseSize(fields[i+3])
			}
		case "repaired", "resilvered":
			// the amount precedes the verb in progress lines
			// ("0B repaired, ...") and follows it in terminal lines
			// ("scrub repaired 0B in ...")
			if i >= 1 {
				ss.Processed = parseSize(fields[i-1])
			}
			if ss.Processed == 0 && i+1 < len(fields) {
				ss.Processed = parseSize(fields[i+1])
			}
		case "errors":
			if i >= 1 && strings.Contains(line, "with") {
				if n, err := parseCount(fields[i-1]); err == nil {
					ss.Errors = n
				}
			}
		}
	}
}

// parseCtimeAfter parses the asctime timestamp that follows marker in
// line, returning unix seconds or 0 when absent/unparseable.
func parseCtimeAfter(line, marker string) int64 {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0
	}
	ts := strings.TrimSpace(line[idx+len(marker):])
	t, err := time.ParseInLocation(ctimeLayout, ts, time.Local)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// parseDurationAfter parses a scan duration following marker, in either
// the "0 days 03:23:10" / "03:23:10" form or the old "5h32m" form.
// Returns the duration in seconds.
func parseDurationAfter(line, marker string) (int64, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	if cut := strings.Index(rest, " with "); cut >= 0 {
		rest = strings.TrimSpace(rest[:cut])
	}

	var days int64
	if f := strings.Fields(rest); len(f) >= 3 && (f[1] == "days" || f[1] == "day") {
		days, _ = strconv.ParseInt(f[0], 10, 64)
		rest = f[2]
	}

	if strings.Count(rest, ":") == 2 {
		var h, m, s int64
		if _, err := fmt.Sscanf(rest, "%d:%d:%d", &h, &m, &s); err == nil {
			return days*86400 + h*3600 + m*60 + s, true
		}
		return 0, false
	}

	if d, err := time.ParseDuration(rest); err == nil {
		return days*86400 + int64(d.Seconds()), true
	}
	return 0, false
}

// parseSize converts a zfs nicenum ("1.30T", "512K", "0B") or a plain
// integer into bytes. Unparseable input yields 0.
func parseSize(s string) uint64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "B")
	if s == "" {
		return 0
	}

	mult := float64(1)
	switch s[len(s)-1] {
	case 'K':
		mult = 1 << 10
	case 'M':
		mult = 1 << 20
	case 'G':
		mult = 1 << 30
	case 'T':
		mult = 1 << 40
	case 'P':
		mult = 1 << 50
	case 'E':
		mult = 1 << 60
	}
	if mult > 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return uint64(v * mult)
}

// parseCount parses an error counter column, which zpool prints either as
// a plain integer or nicenum-abbreviated once it grows large.
func parseCount(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	if strings.IndexFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0 ||
		strings.Contains(s, ".") {
		if v := parseSize(s); v > 0 || s == "0" {
			return v, nil
		}
	}
	return 0, fmt.Errorf("bad counter %q", s)
}

// parseIOKstat reads the legacy per-pool io kstat, which carries the
// cumulative byte and operation counters of the pool's root vdev.
func parseIOKstat(bs []byte, vs *models.VdevStats) error {
	/*
	   # cat /proc/spl/kstat/zfs/tank/io
	   11 1 0x01 12 4368 7862985931 9187999559
	   nread    nwritten reads    writes   wtime    wlentime wupdate  rtime    rlentime rupdate  wcnt     rcnt
	   917996646 1325085696 25092   30712    ...
	*/
	var headers []string

	sc := bufio.NewScanner(bytes.NewReader(bs))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if headers == nil {
			if strings.HasPrefix(line, "nread") {
				headers = strings.Fields(line)
			}
			continue
		}

		values := strings.Fields(line)
		if len(values) != len(headers) {
			return fmt.Errorf("unequal io kstat columns: headers(%d) != values(%d)", len(headers), len(values))
		}

		for i, h := range headers {
			v, err := strconv.ParseUint(values[i], 10, 64)
			if err != nil {
				return fmt.Errorf("bad io kstat value %q for %s: %w", values[i], h, err)
			}
			switch h {
			case "nread":
				vs.ReadBytes = v
			case "nwritten":
				vs.WriteBytes = v
			case "reads":
				vs.ReadOps = v
			case "writes":
				vs.WriteOps = v
			}
		}
		return nil
	}

	return errors.New("no data row in io kstat")
}
