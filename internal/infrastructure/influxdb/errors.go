package influxdb

import "errors"

var (
	// ErrDisabled is returned by Connect when the influxdb section is off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed wraps a failed or unhealthy ping.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed wraps a batch the server rejected.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrClosed is returned when writing through a closed client.
	ErrClosed = errors.New("influxdb: client closed")
)
