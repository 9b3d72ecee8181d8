package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for publishing split reports.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	connected bool
	connMu    sync.RWMutex
}

// Connect establishes a connection to the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS)
//  2. Configures Last Will and Testament (LWT) on the status topic
//  3. Attempts the connection with the configured timeout
//  4. Publishes online status
//
// Parameters:
//   - cfg: MQTT configuration
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: ErrDisabled, or ErrConnectionFailed wrapping the cause
func Connect(cfg config.MQTTConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	topics := NewTopics(cfg.TopicPrefix)
	opts := buildClientOptions(cfg)
	configureLWT(opts, topics, cfg.Broker.ClientID)

	c := newClient(pahomqtt.NewClient(opts), cfg)

	token := c.client.Connect()
	if !token.WaitTimeout(timeout(cfg)) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, timeout(cfg))
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	// Best effort; the report publish reports real failures.
	_ = c.Publish(topics.Status(), buildStatusPayload(statusOnline, cfg.Broker.ClientID, ""), byte(cfg.QoS), true) //nolint:errcheck // see above

	return c, nil
}

// newClient wraps an existing paho client.
func newClient(client pahomqtt.Client, cfg config.MQTTConfig) *Client {
	return &Client{
		client: client,
		cfg:    cfg,
		topics: NewTopics(cfg.TopicPrefix),
	}
}

// Topics returns the topic builders for the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

// Close publishes a graceful offline status and disconnects.
//
// Returns:
//   - error: Always nil; disconnecting an unreachable broker is not an error
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		token := c.client.Publish(c.topics.Status(), byte(c.cfg.QoS), true,
			buildStatusPayload(statusOffline, c.cfg.Broker.ClientID, "graceful_shutdown"))
		token.WaitTimeout(timeout(c.cfg))
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}
