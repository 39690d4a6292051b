package influx

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

const (
	writePath       = "/write"
	lineContentType = "text/plain; charset=utf-8"

	// Retry configuration for the write request
	retryCount    = 2
	retryWaitTime = 1 * time.Second
)

// Writer buffers metric lines and pushes them to an InfluxDB v1 HTTP write
// endpoint in a single request. It implements io.Writer so the collector
// can treat it exactly like standard output; nothing leaves the process
// until Flush is called.
type Writer struct {
	client   *resty.Client
	url      string
	database string
	buf      bytes.Buffer
}

// NewWriter creates a write sink for the given InfluxDB base URL and
// database. The timeout bounds the whole write request.
//
// Example:
//
//	w := influx.NewWriter("http://localhost:8086", "telegraf", 10*time.Second)
//	collector.Out = w
//	...
//	err := w.Flush(ctx)
func NewWriter(url, database string, timeout time.Duration) *Writer {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWaitTime)

	return &Writer{
		client:   client,
		url:      url,
		database: database,
	}
}

// Write appends p to the internal buffer. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// Len returns the number of buffered bytes.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Flush posts all buffered lines to the write endpoint. An empty buffer is
// a no-op. The buffer is kept on failure so the caller could retry, though
// the exporter itself treats a failed flush as fatal for the run.
func (w *Writer) Flush(ctx context.Context) error {
	if w.buf.Len() == 0 {
		return nil
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParam("db", w.database).
		SetHeader("Content-Type", lineContentType).
		SetBody(w.buf.Bytes()).
		Post(w.url + writePath)
	if err != nil {
		return fmt.Errorf("influx write to %s: %w", w.url, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("influx write to %s: unexpected status %s: %s",
			w.url, resp.Status(), resp.String())
	}

	log.Debugf("Pushed %d bytes to %s (db=%s)", w.buf.Len(), w.url, w.database)
	w.buf.Reset()
	return nil
}
