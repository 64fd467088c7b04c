// Package gateway runs the single-threaded cooperative loop that ties the
// serial link, the control plane, the timers and the security controller
// together. It owns no business logic itself.
package gateway

import (
	"context"
	"time"

	"github.com/kgames/security2mqtt/internal/config"
	"github.com/kgames/security2mqtt/internal/log"
	"github.com/kgames/security2mqtt/internal/mqtt"
	"github.com/kgames/security2mqtt/internal/protocol"
	"github.com/kgames/security2mqtt/internal/security"
	"github.com/kgames/security2mqtt/internal/serial"
	"github.com/kgames/security2mqtt/internal/timer"
)

// Broker is the control-plane contract the loop needs; *mqtt.MQTT satisfies
// it and tests substitute a fake.
type Broker interface {
	PublishEvent(payload string)
	PublishAuth(payload string)
	Inbound() <-chan mqtt.Inbound
}

// idleSleep paces the loop when nothing is happening.
const idleSleep = time.Millisecond

type Gateway struct {
	log        *log.Logger
	port       serial.Port
	broker     Broker
	decoder    *protocol.Decoder
	controller *security.Controller

	heartbeatInterval time.Duration
	lastHeartbeat     time.Time

	readBuf []byte
}

func New(cfg *config.Config, logger *log.Logger, port serial.Port, broker Broker) *Gateway {
	sec := cfg.Security
	ctrlCfg := security.Config{
		MotionGrace:     time.Duration(sec.MotionGraceSeconds) * time.Second,
		DisableDuration: time.Duration(sec.DisableDurationSeconds) * time.Second,
		DeviceTimeout:   time.Duration(sec.DeviceTimeoutSeconds) * time.Second,
		BlinkInterval:   time.Duration(sec.BlinkIntervalMillis) * time.Millisecond,
	}
	lookahead := time.Duration(sec.LookaheadMillis) * time.Millisecond

	return &Gateway{
		log:               logger,
		port:              port,
		broker:            broker,
		decoder:           protocol.NewDecoder(lookahead, logger),
		controller:        security.NewController(ctrlCfg, logger),
		heartbeatInterval: time.Duration(sec.HeartbeatSeconds) * time.Second,
		readBuf:           make([]byte, 256),
	}
}

// Controller exposes the state machine for inspection.
func (g *Gateway) Controller() *security.Controller {
	return g.controller
}

// Run drives the loop until the context is cancelled. One iteration:
// gateway heartbeat, drain control-plane messages, timer ticks, decoder
// deadline tick, drain serial bytes.
func (g *Gateway) Run(ctx context.Context) error {
	g.log.Info("Gateway loop started")
	g.broker.PublishEvent(security.EventGatewayReady)
	g.lastHeartbeat = time.Now()

	for {
		select {
		case <-ctx.Done():
			g.log.Info("Gateway loop stopping")
			return nil
		default:
		}

		g.step(time.Now())
		time.Sleep(idleSleep)
	}
}

func (g *Gateway) step(now time.Time) {
	if timer.Elapsed(now, g.lastHeartbeat, g.heartbeatInterval) {
		g.broker.PublishEvent(security.EventGatewayHeartbeat)
		g.lastHeartbeat = now
	}

	g.drainInbound(now)

	g.dispatch(g.controller.Tick(now))

	for _, msg := range g.decoder.Tick(now) {
		g.handleDeviceMessage(msg, now)
	}

	g.drainSerial()
}

func (g *Gateway) drainInbound(now time.Time) {
	for {
		select {
		case in := <-g.broker.Inbound():
			g.handleInbound(in, now)
		default:
			return
		}
	}
}

func (g *Gateway) handleInbound(in mqtt.Inbound, now time.Time) {
	switch in.Kind {
	case mqtt.InboundCommand:
		cmd, err := security.ParseCommand(in.Payload)
		if err != nil {
			g.log.Warning("Ignoring control message: %v", err)
			g.broker.PublishEvent(security.ErrorUnknownCommand)
			return
		}
		g.dispatch(g.controller.HandleCommand(cmd, now))

	case mqtt.InboundAuthResult:
		res, err := security.ParseAuthResult(in.Payload)
		if err != nil {
			g.log.Warning("Ignoring auth message: %v", err)
			return
		}
		g.dispatch(g.controller.HandleAuthResult(res, now))
	}
}

func (g *Gateway) drainSerial() {
	n, err := g.port.Read(g.readBuf)
	if err != nil {
		// Transport errors recover here; the controller never sees them.
		g.log.Error("Serial read error: %v", err)
		return
	}
	if n == 0 {
		return
	}

	now := time.Now()
	for _, b := range g.readBuf[:n] {
		for _, msg := range g.decoder.Feed(b, now) {
			g.handleDeviceMessage(msg, now)
		}
	}
}

func (g *Gateway) handleDeviceMessage(msg protocol.Message, now time.Time) {
	g.log.Debug("Device message: %s", msg)
	g.dispatch(g.controller.HandleMessage(msg, now))
}

func (g *Gateway) dispatch(effects []security.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case security.EffectSendCommand:
			if _, err := g.port.Write(e.Command.Encode()); err != nil {
				g.log.Error("Failed to send %s to device: %v", e.Command, err)
			}
		case security.EffectPublishStatus:
			g.broker.PublishEvent(e.Payload)
		case security.EffectPublishAuth:
			g.broker.PublishAuth(e.Payload)
		}
	}
}
