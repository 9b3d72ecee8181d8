package influxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/config"
)

const (
	pingTimeout      = 10 * time.Second
	defaultBatchSize = 100
)

// Client records one split run in an InfluxDB bucket. Each batch of points
// is written synchronously so a short-lived process sees every failure.
// A Client is not meant to be shared between goroutines.
type Client struct {
	client    influxdb2.Client
	writeAPI  api.WriteAPIBlocking
	batchSize int
	closed    bool
}

// Connect creates a client for cfg and pings the server. The ping is bounded
// by ctx and by a ten second timeout.
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrConnectionFailed, cfg.URL, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: %s not healthy", ErrConnectionFailed, cfg.URL)
	}

	return &Client{
		client:    client,
		writeAPI:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		batchSize: batchSize,
	}, nil
}

// writePoints sends points in batches of at most batchSize. It stops at the
// first failed batch and reports how many points were written before it.
func (c *Client) writePoints(ctx context.Context, points []*write.Point) (int, error) {
	if c.closed || c.writeAPI == nil {
		return 0, ErrClosed
	}

	written := 0
	for start := 0; start < len(points); start += c.batchSize {
		end := min(start+c.batchSize, len(points))
		if err := c.writeAPI.WritePoint(ctx, points[start:end]...); err != nil {
			return written, fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
		written = end
	}
	return written, nil
}

// Close releases the HTTP client. It is safe to call more than once.
func (c *Client) Close() error {
	if c.client == nil || c.closed {
		return nil
	}
	c.closed = true
	c.client.Close()
	return nil
}
