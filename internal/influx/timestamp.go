package influx

import (
	"strconv"
	"time"
)

// Timestamp renders t as a nanosecond unix timestamp with second
// resolution: the second count followed by nine literal zero digits.
// The truncation is deliberate and part of the wire contract — all lines
// emitted within the same second tick compare as simultaneous, which is
// what downstream consumers of this exporter have always seen.
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + "000000000"
}
