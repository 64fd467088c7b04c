package mqtt

import "fmt"

// Topics maps the control-plane topic layout under a configurable prefix.
type Topics struct {
	prefix string
}

func NewTopics(prefix string) *Topics {
	return &Topics{prefix: prefix}
}

// Events is the outbound status topic.
func (t *Topics) Events() string {
	return fmt.Sprintf("%s/events", t.prefix)
}

// Command is the inbound command topic.
func (t *Topics) Command() string {
	return fmt.Sprintf("%s/command", t.prefix)
}

// AuthRequest is the outbound authentication-request topic.
func (t *Topics) AuthRequest() string {
	return fmt.Sprintf("%s/auth_requests", t.prefix)
}

// AuthResponse is the inbound authentication-result topic.
func (t *Topics) AuthResponse() string {
	return fmt.Sprintf("%s/auth_response", t.prefix)
}

// Status carries the retained online/offline availability payload.
func (t *Topics) Status() string {
	return fmt.Sprintf("%s/status", t.prefix)
}

// Config carries the retained gateway description.
func (t *Topics) Config() string {
	return fmt.Sprintf("%s/config", t.prefix)
}
