package mqtt

import "strings"

// Topics builds the topic names below the configured prefix.
//
//	topics := mqtt.NewTopics("knxsplit")
//	topics.Report() // "knxsplit/report"
type Topics struct {
	prefix string
}

// NewTopics returns topic builders for prefix. Surrounding slashes are trimmed.
func NewTopics(prefix string) Topics {
	return Topics{prefix: strings.Trim(prefix, "/")}
}

// Report returns the topic carrying the latest split report (retained).
//
// Example: knxsplit/report
func (t Topics) Report() string {
	return t.prefix + "/report"
}

// Status returns the client status topic (retained).
//
// Example: knxsplit/status
func (t Topics) Status() string {
	return t.prefix + "/status"
}

// GroupAddress returns the per-address counter topic. The group address
// slashes become topic levels.
//
// Example: knxsplit/group/0/7/12
func (t Topics) GroupAddress(groupAddress string) string {
	return t.prefix + "/group/" + groupAddress
}
