package zpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfskit/zpool-influxdb/internal/models"
)

const statusScrubInProgress = `  pool: tank
 state: ONLINE
  scan: scrub in progress since Sun Aug 24 10:00:00 2025
	1.50T / 3.00T scanned at 289M/s, 1.25T / 3.00T issued at 224M/s
	0B repaired, 50.00% done, 02:30:12 to go
config:

	NAME        STATE     READ WRITE CKSUM
	tank        ONLINE       1     2     3
	  mirror-0  ONLINE       0     0     0
	    sda     ONLINE       0     0     0
	    sdb     ONLINE       0     0     0

errors: No known data errors
`

const statusScrubFinished = `  pool: tank
 state: ONLINE
  scan: scrub repaired 16K in 03:23:10 with 2 errors on Mon Aug 25 01:23:10 2025
config:

	NAME        STATE     READ WRITE CKSUM
	tank        ONLINE       0     0     0

errors: No known data errors
`

const statusScrubCanceled = `  pool: tank
 state: ONLINE
  scan: scrub canceled on Sun Aug 24 11:12:13 2025
config:

	NAME        STATE     READ WRITE CKSUM
	tank        ONLINE       0     0     0

errors: No known data errors
`

const statusScrubPaused = `  pool: tank
 state: ONLINE
  scan: scrub paused since Sun Aug 24 11:00:00 2025
	scrub started on Sun Aug 24 10:00:00 2025
	1.50T / 3.00T scanned at 289M/s, 1.25T / 3.00T issued at 224M/s
	0B repaired, 50.00% done
config:

	NAME        STATE     READ WRITE CKSUM
	tank        ONLINE       0     0     0

errors: No known data errors
`

const statusNeverScanned = `  pool: fresh
 state: ONLINE
config:

	NAME        STATE     READ WRITE CKSUM
	fresh       ONLINE       0     0     0

errors: No known data errors
`

func localUnix(year int, month time.Month, day, hour, min, sec int) int64 {
	return time.Date(year, month, day, hour, min, sec, 0, time.Local).Unix()
}

func TestParseListOutput(t *testing.T) {
	out := []byte("tank\t21367462298\t9051643576\t33\tONLINE\n")

	stats, err := parseListOutput(out, "tank")
	require.NoError(t, err)

	assert.Equal(t, "tank", stats.Name)
	assert.Equal(t, uint64(21367462298), stats.Size)
	assert.Equal(t, uint64(9051643576), stats.Alloc)
	assert.Equal(t, uint64(33), stats.Fragmentation)
	assert.Equal(t, "ONLINE", stats.Health)
}

func TestParseListOutput_DashFragmentation(t *testing.T) {
	out := []byte("tank\t400\t100\t-\tDEGRADED\n")

	stats, err := parseListOutput(out, "tank")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.Fragmentation)
	assert.Equal(t, "DEGRADED", stats.Health)
}

func TestParseListOutput_NameWithSpace(t *testing.T) {
	out := []byte("tank 1\t400\t100\t0\tONLINE\n")

	stats, err := parseListOutput(out, "tank 1")
	require.NoError(t, err)
	assert.Equal(t, "tank 1", stats.Name)
	assert.Equal(t, uint64(400), stats.Size)
}

func TestParseStatusOutput_NameWithSpace(t *testing.T) {
	status := "  pool: tank 1\nconfig:\n\tNAME        STATE     READ WRITE CKSUM\n\ttank 1      ONLINE       4     5     6\n"

	var vs models.VdevStats
	_, err := parseStatusOutput([]byte(status), "tank 1", &vs)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), vs.ReadErrors)
	assert.Equal(t, uint64(5), vs.WriteErrors)
	assert.Equal(t, uint64(6), vs.ChecksumErrors)
}

func TestParseListOutput_PoolMissing(t *testing.T) {
	out := []byte("rpool\t400\t100\t0\tONLINE\n")

	_, err := parseListOutput(out, "tank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `pool "tank" not present`)
}

func TestParseStatusOutput_RootVdevErrors(t *testing.T) {
	var vs models.VdevStats
	_, err := parseStatusOutput([]byte(statusScrubInProgress), "tank", &vs)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), vs.ReadErrors)
	assert.Equal(t, uint64(2), vs.WriteErrors)
	assert.Equal(t, uint64(3), vs.ChecksumErrors)
}

func TestParseStatusOutput_ScrubInProgress(t *testing.T) {
	var vs models.VdevStats
	ss, err := parseStatusOutput([]byte(statusScrubInProgress), "tank", &vs)
	require.NoError(t, err)
	require.NotNil(t, ss)

	assert.Equal(t, models.ScanFuncScrub, ss.Func)
	assert.Equal(t, models.ScanStateScanning, ss.State)
	assert.Equal(t, localUnix(2025, time.August, 24, 10, 0, 0), ss.StartTime)
	assert.Equal(t, ss.StartTime, ss.PassStartTime)
	assert.Equal(t, uint64(1.50*(1<<40)), ss.Examined)
	assert.Equal(t, uint64(3.00*(1<<40)), ss.ToExamine)
	assert.Equal(t, ss.Examined, ss.PassExamined)
}

func TestParseStatusOutput_ScrubFinished(t *testing.T) {
	var vs models.VdevStats
	ss, err := parseStatusOutput([]byte(statusScrubFinished), "tank", &vs)
	require.NoError(t, err)
	require.NotNil(t, ss)

	assert.Equal(t, models.ScanFuncScrub, ss.Func)
	assert.Equal(t, models.ScanStateFinished, ss.State)

	end := localUnix(2025, time.August, 25, 1, 23, 10)
	assert.Equal(t, end, ss.EndTime)
	assert.Equal(t, end-(3*3600+23*60+10), ss.StartTime)
	assert.Equal(t, uint64(16*1024), ss.Processed)
	assert.Equal(t, uint64(2), ss.Errors)
}

func TestParseStatusOutput_ScrubCanceled(t *testing.T) {
	var vs models.VdevStats
	ss, err := parseStatusOutput([]byte(statusScrubCanceled), "tank", &vs)
	require.NoError(t, err)
	require.NotNil(t, ss)

	assert.Equal(t, models.ScanStateCanceled, ss.State)
	assert.Equal(t, localUnix(2025, time.August, 24, 11, 12, 13), ss.EndTime)
}

func TestParseStatusOutput_ScrubPaused(t *testing.T) {
	var vs models.VdevStats
	ss, err := parseStatusOutput([]byte(statusScrubPaused), "tank", &vs)
	require.NoError(t, err)
	require.NotNil(t, ss)

	// paused scans stay in the scanning state with the pause timestamp set
	assert.Equal(t, models.ScanStateScanning, ss.State)
	assert.Equal(t, localUnix(2025, time.August, 24, 11, 0, 0), ss.PauseTime)
	assert.Equal(t, localUnix(2025, time.August, 24, 10, 0, 0), ss.StartTime)
	assert.Equal(t, uint64(1.50*(1<<40)), ss.Examined)
}

func TestParseStatusOutput_NeverScanned(t *testing.T) {
	var vs models.VdevStats
	ss, err := parseStatusOutput([]byte(statusNeverScanned), "fresh", &vs)
	require.NoError(t, err)
	assert.Nil(t, ss, "no scan section means no scan stats, not an error")
}

func TestParseStatusOutput_MissingConfigSection(t *testing.T) {
	var vs models.VdevStats
	_, err := parseStatusOutput([]byte("  pool: tank\n state: ONLINE\n"), "tank", &vs)
	require.Error(t, err)
	assert.Equal(t, KindMissingVdevTree, KindOf(err))
}

func TestParseStatusOutput_UnparseableRootRow(t *testing.T) {
	status := `  pool: tank
config:
	NAME        STATE     READ WRITE CKSUM
	tank        ONLINE       x     0     0
`
	var vs models.VdevStats
	_, err := parseStatusOutput([]byte(status), "tank", &vs)
	require.Error(t, err)
	assert.Equal(t, KindMissingVdevStats, KindOf(err))
}

func TestParseStatusOutput_WrongRootName(t *testing.T) {
	var vs models.VdevStats
	_, err := parseStatusOutput([]byte(statusNeverScanned), "tank", &vs)
	require.Error(t, err)
	assert.Equal(t, KindMissingVdevTree, KindOf(err))
}

func TestParseScanSection_OldWording(t *testing.T) {
	lines := []string{
		"scrub in progress since Sun Aug 24 10:00:00 2025",
		"1.50T scanned out of 3.00T at 130M/s, 3h12m to go",
		"0B repaired, 50.00% done",
	}

	ss := parseScanSection(lines, "tank")
	require.NotNil(t, ss)
	assert.Equal(t, uint64(1.50*(1<<40)), ss.Examined)
	assert.Equal(t, uint64(3.00*(1<<40)), ss.ToExamine)
}

func TestParseScanSection_Resilver(t *testing.T) {
	lines := []string{
		"resilvered 1.50T in 0 days 05:30:00 with 0 errors on Mon Aug 25 01:23:10 2025",
	}

	ss := parseScanSection(lines, "tank")
	require.NotNil(t, ss)
	assert.Equal(t, models.ScanFuncResilver, ss.Func)
	assert.Equal(t, models.ScanStateFinished, ss.State)
	assert.Equal(t, uint64(1.50*(1<<40)), ss.Processed)
	end := localUnix(2025, time.August, 25, 1, 23, 10)
	assert.Equal(t, end-(5*3600+30*60), ss.StartTime)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected uint64
	}{
		{"0B", 0},
		{"512", 512},
		{"512K", 512 << 10},
		{"1.5M", 1572864},
		{"2G", 2 << 30},
		{"1.50T", uint64(1.50 * (1 << 40))},
		{"garbage", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseSize(tt.input))
		})
	}
}

func TestParseDurationAfter(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected int64
	}{
		{
			name:     "HH:MM:SS",
			line:     "scrub repaired 0B in 03:23:10 with 0 errors on Mon Aug 25 01:23:10 2025",
			expected: 3*3600 + 23*60 + 10,
		},
		{
			name:     "days prefix",
			line:     "resilvered 1T in 2 days 01:00:00 with 0 errors on Mon Aug 25 01:23:10 2025",
			expected: 2*86400 + 3600,
		},
		{
			name:     "old go-style duration",
			line:     "scrub repaired 0 in 5h32m with 0 errors on Mon Aug 25 01:23:10 2025",
			expected: 5*3600 + 32*60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := parseDurationAfter(tt.line, " in ")
			require.True(t, ok)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestParseIOKstat(t *testing.T) {
	kstat := `11 1 0x01 12 4368 7862985931 9187999559
nread    nwritten reads    writes   wtime    wlentime wupdate  rtime    rlentime rupdate  wcnt     rcnt
917996646 1325085696 25092 30712 0 0 0 0 0 0 0 0
`
	var vs models.VdevStats
	require.NoError(t, parseIOKstat([]byte(kstat), &vs))

	assert.Equal(t, uint64(917996646), vs.ReadBytes)
	assert.Equal(t, uint64(1325085696), vs.WriteBytes)
	assert.Equal(t, uint64(25092), vs.ReadOps)
	assert.Equal(t, uint64(30712), vs.WriteOps)
}

func TestParseIOKstat_Malformed(t *testing.T) {
	var vs models.VdevStats
	assert.Error(t, parseIOKstat([]byte("nread nwritten\n1\n"), &vs))
	assert.Error(t, parseIOKstat([]byte(""), &vs))
}
