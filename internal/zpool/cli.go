package zpool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zfskit/zpool-influxdb/internal/models"
)

// defaultKstatRoot is where the ZFS kernel module exposes per-pool kstat
// files on Linux.
const defaultKstatRoot = "/proc/spl/kstat/zfs"

// CLI is the zpool-command-backed Provider. It holds no state beyond its
// configuration; every query execs the binary and parses the output.
//
// Construct one in main and pass it into the collector — the provider
// handle is an explicit object with collector-scoped lifetime, not
// process-global state.
type CLI struct {
	binary    string
	timeout   time.Duration
	kstatRoot string
}

// NewCLI creates a provider that runs the given zpool binary with the
// given per-command timeout.
func NewCLI(binary string, timeout time.Duration) *CLI {
	return &CLI{
		binary:    binary,
		timeout:   timeout,
		kstatRoot: defaultKstatRoot,
	}
}

// Pools returns the names of all imported pools, in zpool list order.
func (c *CLI) Pools(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "list", "-Hp", "-o", "name")
	if err != nil {
		return nil, &Error{Kind: KindRefresh, Err: err}
	}

	var pools []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			pools = append(pools, name)
		}
	}
	return pools, nil
}

// Stats queries capacity, health, error counters and scan status for one
// pool. Scan stats are nil (not an error) when the pool has never been
// scanned or the status output carried no usable scan record.
func (c *CLI) Stats(ctx context.Context, pool string) (*models.PoolStats, *models.ScanStats, error) {
	out, err := c.run(ctx, "list", "-Hp", "-o", "name,size,alloc,frag,health", pool)
	if err != nil {
		if strings.Contains(err.Error(), "no such pool") {
			return nil, nil, &Error{Kind: KindNotFound, Pool: pool, Err: err}
		}
		return nil, nil, &Error{Kind: KindRefresh, Pool: pool, Err: err}
	}

	stats, err := parseListOutput(out, pool)
	if err != nil {
		return nil, nil, &Error{Kind: KindRefresh, Pool: pool, Err: err}
	}

	statusOut, err := c.run(ctx, "status", pool)
	if err != nil {
		return nil, nil, &Error{Kind: KindRefresh, Pool: pool, Err: err}
	}

	scan, err := parseStatusOutput(statusOut, pool, &stats.Vdev)
	if err != nil {
		return nil, nil, err
	}

	// Byte and op counters come from the pool's io kstat. The file is
	// absent on platforms (and newer ZFS releases) that dropped it; the
	// counters then stay zero rather than failing the pool.
	c.readIOKstat(pool, &stats.Vdev)

	return stats, scan, nil
}

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("Executing '%s %s'", c.binary, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("'%s %s': %s", c.binary, strings.Join(args, " "), msg)
	}
	return stdout.Bytes(), nil
}

func (c *CLI) readIOKstat(pool string, vs *models.VdevStats) {
	path := filepath.Join(c.kstatRoot, pool, "io")
	bs, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("No io kstat for pool %q (%v), byte/op counters stay zero", pool, err)
		return
	}
	if err := parseIOKstat(bs, vs); err != nil {
		log.Warnf("Unreadable io kstat %s: %v", path, err)
	}
}
