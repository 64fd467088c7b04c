package security

import (
	"time"

	"github.com/kgames/security2mqtt/internal/led"
	"github.com/kgames/security2mqtt/internal/log"
	"github.com/kgames/security2mqtt/internal/protocol"
	"github.com/kgames/security2mqtt/internal/timer"
	"github.com/kgames/security2mqtt/internal/util"
)

// Config holds the controller timing parameters.
type Config struct {
	// MotionGrace is the delay between motion detection and alarm
	// activation, cancellable by motion stopping.
	MotionGrace time.Duration
	// DisableDuration is the legacy untimed disable period: an alarm
	// disabled without an explicit mode re-arms after this long.
	DisableDuration time.Duration
	// DeviceTimeout is the maximum heartbeat silence before the device is
	// considered disconnected.
	DeviceTimeout time.Duration
	// BlinkInterval is the length of one LED blink phase.
	BlinkInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		MotionGrace:     5 * time.Second,
		DisableDuration: 60 * time.Second,
		DeviceTimeout:   30 * time.Second,
		BlinkInterval:   led.DefaultInterval,
	}
}

// Controller is the security state machine. It consumes device messages,
// control-plane commands, auth results and timer ticks, and returns the
// effects to perform. All state is owned here and must only be touched from
// the single gateway loop.
type Controller struct {
	cfg     Config
	log     *log.Logger
	blinker *led.Blinker

	state         State
	manuallyArmed bool

	disableMode  DisableMode
	disableUntil timer.Deadline
	disabledAt   time.Time

	motionDeadline timer.Deadline
	pendingSecret  string

	lastHeartbeat   time.Time
	deviceConnected bool
}

func NewController(cfg Config, logger *log.Logger) *Controller {
	return &Controller{
		cfg:     cfg,
		log:     logger,
		blinker: led.NewBlinker(cfg.BlinkInterval),
		state:   StateReady,
	}
}

func (c *Controller) State() State             { return c.state }
func (c *Controller) ManuallyArmed() bool      { return c.manuallyArmed }
func (c *Controller) DisableMode() DisableMode { return c.disableMode }
func (c *Controller) DeviceConnected() bool    { return c.deviceConnected }
func (c *Controller) PendingSecret() string    { return c.pendingSecret }

// HandleMessage dispatches one decoded device frame.
func (c *Controller) HandleMessage(msg protocol.Message, now time.Time) []Effect {
	switch msg.Opcode {
	case protocol.MsgStatusReady:
		c.log.Device("Device ready")
		return []Effect{publishStatus(EventStatusReady)}

	case protocol.MsgMotionDetected:
		return c.motionDetected(now)

	case protocol.MsgMotionStopped:
		return c.motionStopped()

	case protocol.MsgRFIDDetected:
		c.log.Device("RFID card detected")
		return nil

	case protocol.MsgButtonPressed:
		c.log.Device("Rearm button pressed - resetting alarm")
		return c.resetAlarm()

	case protocol.MsgRFIDReadSuccess:
		if !msg.HasData {
			c.log.Warning("RFID read success without key payload, ignoring")
			return nil
		}
		return c.rfidDetected(util.Normalize(msg.Data))

	case protocol.MsgRFIDReadFailed:
		c.log.Device("RFID read failed")
		return []Effect{publishStatus(EventRFIDReadFailed)}

	case protocol.MsgRFIDWriteSuccess:
		return []Effect{publishStatus(EventWriteSuccess)}

	case protocol.MsgRFIDWriteFailed:
		return []Effect{publishStatus(EventWriteFailed)}

	case protocol.MsgRFIDWriteCompleted:
		return c.writeCompleted()

	case protocol.MsgStatusUpdate:
		if !msg.HasData {
			c.log.Device("Status update requested")
			return nil
		}
		data := util.Normalize(msg.Data)
		c.log.Device("Status update: %s", data)
		return []Effect{publishStatus(EventDeviceStatusPrefix + data)}

	case protocol.MsgHeartbeat:
		return c.heartbeat(now)

	default:
		c.log.Warning("Unknown device opcode: %d", byte(msg.Opcode))
		return nil
	}
}

// HandleCommand dispatches one parsed control-plane command.
func (c *Controller) HandleCommand(cmd Command, now time.Time) []Effect {
	switch cmd.Type {
	case CommandDisableAlarm:
		return c.disableAlarm(now)
	case CommandActivateAlarm:
		return c.activateAlarmManual()
	case CommandResetAlarm:
		return c.resetAlarm()
	case CommandDisableAlarmPermanent:
		return c.disableAlarmPermanent()
	case CommandDisableAlarmTimed:
		return c.disableAlarmTimed(cmd.Minutes, now)
	case CommandEnableAlarm:
		return c.enableAlarm()
	case CommandRFIDWritePrepare:
		return c.prepareRFIDWrite(cmd.Key)
	case CommandRFIDWriteConfirm:
		return c.confirmRFIDWrite()
	case CommandRFIDWriteInitialize:
		return c.initializeRFIDWrite()
	case CommandAbort:
		return c.abort()
	default:
		c.log.Warning("Unhandled command type: %v", cmd.Type)
		return nil
	}
}

// HandleAuthResult applies the control plane's answer to a pending
// authentication request.
func (c *Controller) HandleAuthResult(res AuthResult, now time.Time) []Effect {
	c.pendingSecret = ""

	if res == AuthFailure {
		c.log.Info("Authentication failed")
		start := c.blinker.Start(protocol.ColorRed, 3, now)
		return []Effect{
			sendCommand(start),
			publishAuth(AckAuthFailed),
			publishStatus(EventAuthFailed),
		}
	}

	// RFID cannot disable a manually activated alarm.
	if c.manuallyArmed && c.state == StateAlarmActive {
		c.log.Info("Authentication successful but alarm is manually activated - RFID disable blocked")
		return []Effect{
			publishAuth(AckAuthSuccess),
			publishStatus(EventAuthSuccessBlocked),
		}
	}

	c.log.Info("Authentication successful - disabling alarm")
	c.state = StateAlarmDisabled
	c.disableMode = DisableNone
	c.disableUntil.Clear()
	c.disabledAt = now
	c.manuallyArmed = false

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdSetBuzzerOff))}
	effects = append(effects, c.setLED(protocol.ColorGreen))
	effects = append(effects,
		publishAuth(AckAuthSuccess),
		publishStatus(EventAlarmDisabledRFID),
	)
	return effects
}

// Tick advances every timer-driven transition: the motion grace period, the
// disable expiries, device liveness, and the blink sequence.
func (c *Controller) Tick(now time.Time) []Effect {
	var effects []Effect

	if c.state == StateMotionDetected && c.motionDeadline.Due(now) {
		effects = append(effects, c.activateAlarmAuto()...)
	}

	effects = append(effects, c.checkDisableExpiry(now)...)

	if c.deviceConnected && timer.Elapsed(now, c.lastHeartbeat, c.cfg.DeviceTimeout) {
		c.deviceConnected = false
		c.log.Warning("Device connection lost - no heartbeat for %v", c.cfg.DeviceTimeout)
		effects = append(effects, publishStatus(EventDeviceDisconnected))
	}

	for _, cmd := range c.blinker.Tick(now) {
		effects = append(effects, sendCommand(cmd))
	}

	return effects
}

func (c *Controller) motionDetected(now time.Time) []Effect {
	effects := []Effect{publishStatus(EventMotionDetected)}

	switch c.state {
	case StateAlarmDisabled:
		c.log.Debug("Motion detected (alarm disabled)")
	case StateAlarmActive:
		c.log.Debug("Motion detected (alarm already active)")
	case StateReady:
		c.state = StateMotionDetected
		c.motionDeadline = timer.After(now, c.cfg.MotionGrace)
		effects = append(effects, c.setLED(protocol.ColorOrange))
		c.log.Info("Motion detected - starting %v grace period", c.cfg.MotionGrace)
	}

	return effects
}

func (c *Controller) motionStopped() []Effect {
	effects := []Effect{publishStatus(EventMotionStopped)}

	if c.state == StateMotionDetected {
		c.state = StateReady
		c.motionDeadline.Clear()
		effects = append(effects, c.setLED(protocol.ColorOff))
		c.log.Info("Motion stopped - alarm trigger cancelled")
	}

	return effects
}

func (c *Controller) activateAlarmAuto() []Effect {
	c.state = StateAlarmActive
	c.manuallyArmed = false
	c.motionDeadline.Clear()
	c.log.Info("ALARM ACTIVATED - motion persisted beyond grace period")

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdSetBuzzerOn))}
	effects = append(effects, c.setLED(protocol.ColorRed))
	effects = append(effects, publishStatus(EventAlarmTriggered))
	return effects
}

func (c *Controller) disableAlarm(now time.Time) []Effect {
	c.log.Info("Alarm disabled via control plane")
	c.state = StateAlarmDisabled
	c.disableMode = DisableNone
	c.disableUntil.Clear()
	c.disabledAt = now
	c.manuallyArmed = false

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdSetBuzzerOff))}
	effects = append(effects, c.setLED(protocol.ColorGreen))
	effects = append(effects, publishStatus(AckDisableAlarm))
	return effects
}

func (c *Controller) activateAlarmManual() []Effect {
	c.log.Info("Alarm manually activated - RFID disable blocked")
	c.state = StateAlarmActive
	c.manuallyArmed = true
	c.disableMode = DisableNone
	c.disableUntil.Clear()

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdSetBuzzerOn))}
	effects = append(effects, c.setLED(protocol.ColorRed))
	effects = append(effects,
		publishStatus(EventAlarmTriggered),
		publishStatus(AckActivateAlarm),
	)
	return effects
}

func (c *Controller) disableAlarmPermanent() []Effect {
	c.log.Info("Alarm permanently disabled")
	c.state = StateAlarmDisabled
	c.disableMode = DisablePermanent
	c.disableUntil.Clear()
	c.manuallyArmed = false

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdSetBuzzerOff))}
	effects = append(effects, c.setLED(protocol.ColorGreen))
	effects = append(effects, publishStatus(AckDisableAlarm))
	return effects
}

func (c *Controller) disableAlarmTimed(minutes int, now time.Time) []Effect {
	c.log.Info("Alarm disabled for %d minutes", minutes)
	c.state = StateAlarmDisabled
	c.disableMode = DisableTimed
	c.disableUntil = timer.After(now, time.Duration(minutes)*time.Minute)
	c.manuallyArmed = false

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdSetBuzzerOff))}
	effects = append(effects, c.setLED(protocol.ColorGreen))
	effects = append(effects, publishStatus(AckDisableAlarm))
	return effects
}

func (c *Controller) enableAlarm() []Effect {
	c.log.Info("Alarm re-enabled")
	c.clearAlarmState()

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdSetBuzzerOff))}
	effects = append(effects, c.setLED(protocol.ColorOff))
	effects = append(effects, publishStatus(EventStateReady))
	return effects
}

func (c *Controller) resetAlarm() []Effect {
	c.log.Info("Alarm reset and rearmed")
	c.clearAlarmState()

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdSetBuzzerOff))}
	effects = append(effects, c.setLED(protocol.ColorOff))
	effects = append(effects,
		publishStatus(EventAlarmReset),
		publishStatus(EventStateReady),
	)
	return effects
}

func (c *Controller) rfidDetected(key string) []Effect {
	c.pendingSecret = key
	c.log.Info("RFID authentication request sent")
	return []Effect{publishAuth(AuthRequestPrefix + key)}
}

func (c *Controller) prepareRFIDWrite(key string) []Effect {
	c.log.Info("Preparing RFID write mode")
	c.clearAlarmState()
	c.state = StateRFIDWriteMode
	return []Effect{
		sendCommand(protocol.DataCommand(protocol.CmdRFIDWritePrepare, key)),
		publishStatus(EventWritePreparedPrefix + key),
	}
}

func (c *Controller) confirmRFIDWrite() []Effect {
	if c.state != StateRFIDWriteMode {
		c.log.Error("Cannot confirm RFID write - not in prepared state")
		return []Effect{publishStatus(ErrorWriteNotPrepared)}
	}
	c.log.Info("Confirming RFID write mode - activating write mode")
	return []Effect{
		sendCommand(protocol.SimpleCommand(protocol.CmdRFIDWriteConfirm)),
		publishStatus(EventWriteActive),
	}
}

func (c *Controller) initializeRFIDWrite() []Effect {
	if c.state != StateRFIDWriteMode {
		return nil
	}
	c.log.Info("RFID write initialized")
	return []Effect{publishStatus(AckWriteInitialize)}
}

func (c *Controller) writeCompleted() []Effect {
	effects := []Effect{publishStatus(EventWriteCompleted)}
	if c.state == StateRFIDWriteMode {
		c.log.Info("RFID write completed")
		c.state = StateReady
		effects = append(effects, c.setLED(protocol.ColorOff))
	}
	return effects
}

func (c *Controller) abort() []Effect {
	c.log.Info("Aborting current operation")
	c.clearAlarmState()

	effects := []Effect{sendCommand(protocol.SimpleCommand(protocol.CmdRFIDNormalMode))}
	effects = append(effects, c.setLED(protocol.ColorOff))
	effects = append(effects, publishStatus(AckAbort))
	return effects
}

func (c *Controller) heartbeat(now time.Time) []Effect {
	c.lastHeartbeat = now
	effects := []Effect{publishStatus(EventDeviceHeartbeat)}

	if !c.deviceConnected {
		c.deviceConnected = true
		c.log.Info("Device connection restored")
		effects = append(effects, publishStatus(EventDeviceConnected))
	}

	return effects
}

func (c *Controller) checkDisableExpiry(now time.Time) []Effect {
	if c.state != StateAlarmDisabled {
		return nil
	}

	switch c.disableMode {
	case DisablePermanent:
		return nil

	case DisableTimed:
		if !c.disableUntil.Due(now) {
			return nil
		}
		c.log.Info("Alarm re-enabled after timed disable")
		return c.enableAlarm()

	default:
		// Legacy untimed disable: re-arm after the fixed duration.
		if !timer.Elapsed(now, c.disabledAt, c.cfg.DisableDuration) {
			return nil
		}
		c.log.Info("Alarm re-enabled after disable timeout")
		c.state = StateReady
		effects := []Effect{c.setLED(protocol.ColorOff)}
		effects = append(effects, publishStatus(EventAlarmRearmed))
		return effects
	}
}

func (c *Controller) clearAlarmState() {
	c.state = StateReady
	c.manuallyArmed = false
	c.disableMode = DisableNone
	c.disableUntil.Clear()
	c.motionDeadline.Clear()
}

// setLED cancels any blink sequence in flight and emits the LED command.
func (c *Controller) setLED(color protocol.Color) Effect {
	c.blinker.Cancel()
	return sendCommand(protocol.SetLEDCommand(color))
}
