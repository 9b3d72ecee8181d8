package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "knxsplit/report")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	wait := timeout(c.cfg)
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, wait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// reportEnvelope wraps a report with publishing metadata.
type reportEnvelope struct {
	ClientID    string `json:"client_id"`
	PublishedAt string `json:"published_at"`
	Report      any    `json:"report"`
}

// BuildReportPayload encodes report as the JSON message body.
func BuildReportPayload(clientID string, report any) ([]byte, error) {
	data, err := json.Marshal(reportEnvelope{
		ClientID:    clientID,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
		Report:      report,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return data, nil
}

// PublishReport publishes report as a retained JSON message on the report
// topic, followed by one retained message per group address carrying its
// telegram count.
func (c *Client) PublishReport(report any, groupAddresses map[string]int) error {
	payload, err := BuildReportPayload(c.cfg.Broker.ClientID, report)
	if err != nil {
		return err
	}

	qos := byte(c.cfg.QoS)
	if err := c.Publish(c.topics.Report(), payload, qos, true); err != nil {
		return err
	}

	for ga, count := range groupAddresses {
		if err := c.Publish(c.topics.GroupAddress(ga), []byte(strconv.Itoa(count)), qos, true); err != nil {
			return fmt.Errorf("publishing %s: %w", ga, err)
		}
	}
	return nil
}
