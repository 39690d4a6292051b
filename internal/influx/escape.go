// Package influx implements the pieces of the InfluxDB line protocol the
// exporter needs: tag value escaping, timestamp rendering, and an HTTP
// write sink for the v1 /write endpoint.
package influx

// Escape returns s with every line protocol special character (space,
// comma, equals sign, backslash) prefixed by a backslash. All other
// characters pass through unchanged. Escaping matters because a pool name
// can contain any of these characters and would otherwise break the
// tag segment of a metric line.
//
// The input is never mutated; the result is a new string sized for the
// worst case of every character needing an escape.
func Escape(s string) string {
	buf := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', ',', '=', '\\':
			buf = append(buf, '\\')
		}
		buf = append(buf, s[i])
	}
	return string(buf)
}
