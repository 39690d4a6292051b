package exporter

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zfskit/zpool-influxdb/internal/influx"
	"github.com/zfskit/zpool-influxdb/internal/zpool"
)

// Collector drives one collection pass: it iterates pools through the
// provider, derives metrics and writes lines to Out. It is single-use and
// synchronous — the process runs one pass per invocation of the external
// scheduler and exits.
type Collector struct {
	Provider zpool.Provider
	Out      io.Writer

	// Filter restricts the pass to one exactly-named pool. Empty means
	// all pools. A filter matching nothing is not an error (the pass
	// simply emits nothing), mirroring the historical behavior.
	Filter string

	// Now supplies the clock; nil means time.Now. Tests inject a fixed
	// clock here.
	Now func() time.Time

	Opts Options
}

// Run executes one collection pass. Each pool yields one pool line and,
// when a usable scan record exists, one scan line. The pass stops at the
// first provider failure and returns it.
func (c *Collector) Run(ctx context.Context) error {
	now := c.Now
	if now == nil {
		now = time.Now
	}

	pools, err := c.Provider.Pools(ctx)
	if err != nil {
		return fmt.Errorf("listing pools: %w", err)
	}

	matched := 0
	for _, name := range pools {
		if c.Filter != "" && name != c.Filter {
			continue
		}
		matched++

		stats, scan, err := c.Provider.Stats(ctx, name)
		if err != nil {
			return err
		}

		escaped := influx.Escape(name)
		ts := now()

		if _, err := io.WriteString(c.Out, FormatPoolLine(stats, escaped, ts, c.Opts)); err != nil {
			return fmt.Errorf("writing pool line for %q: %w", name, err)
		}

		progress, ok := DeriveScanProgress(scan, ts, c.Opts)
		if !ok {
			log.Debugf("Pool %q has no usable scan stats, skipping scan line", name)
			continue
		}
		if _, err := io.WriteString(c.Out, FormatScanLine(progress, escaped, ts)); err != nil {
			return fmt.Errorf("writing scan line for %q: %w", name, err)
		}
	}

	if c.Filter != "" && matched == 0 {
		log.Debugf("No pool matched filter %q", c.Filter)
	}

	return nil
}
