package security

import "github.com/kgames/security2mqtt/internal/protocol"

// EffectKind says which side effect the gateway loop must perform.
type EffectKind int

const (
	// EffectSendCommand writes Command to the serial link.
	EffectSendCommand EffectKind = iota
	// EffectPublishStatus publishes Payload on the outbound status topic.
	EffectPublishStatus
	// EffectPublishAuth publishes Payload on the auth-request topic.
	EffectPublishAuth
)

// Effect is one side effect requested by the controller. The controller
// performs no I/O itself; the gateway loop dispatches effects in order.
type Effect struct {
	Kind    EffectKind
	Command protocol.Command
	Payload string
}

func sendCommand(cmd protocol.Command) Effect {
	return Effect{Kind: EffectSendCommand, Command: cmd}
}

func publishStatus(payload string) Effect {
	return Effect{Kind: EffectPublishStatus, Payload: payload}
}

func publishAuth(payload string) Effect {
	return Effect{Kind: EffectPublishAuth, Payload: payload}
}
