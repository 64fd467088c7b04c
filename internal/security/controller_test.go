package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgames/security2mqtt/internal/log"
	"github.com/kgames/security2mqtt/internal/protocol"
)

func newTestController() *Controller {
	return NewController(DefaultConfig(), log.NewLogger("error"))
}

func statuses(effects []Effect) []string {
	var out []string
	for _, e := range effects {
		if e.Kind == EffectPublishStatus {
			out = append(out, e.Payload)
		}
	}
	return out
}

func auths(effects []Effect) []string {
	var out []string
	for _, e := range effects {
		if e.Kind == EffectPublishAuth {
			out = append(out, e.Payload)
		}
	}
	return out
}

func sentOpcodes(effects []Effect) []protocol.Opcode {
	var out []protocol.Opcode
	for _, e := range effects {
		if e.Kind == EffectSendCommand {
			out = append(out, e.Command.Opcode)
		}
	}
	return out
}

func ledPayloads(effects []Effect) []string {
	var out []string
	for _, e := range effects {
		if e.Kind == EffectSendCommand && e.Command.Opcode == protocol.CmdSetLEDRGB {
			out = append(out, e.Command.Data)
		}
	}
	return out
}

func simpleMsg(op protocol.Opcode) protocol.Message {
	return protocol.Message{Opcode: op}
}

func dataMsg(op protocol.Opcode, data string) protocol.Message {
	return protocol.Message{Opcode: op, HasData: true, Data: data}
}

func TestMotionGraceTimeoutTriggersAlarm(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now)
	assert.Equal(t, StateMotionDetected, c.State())
	assert.Contains(t, statuses(effects), EventMotionDetected)
	assert.Equal(t, []string{protocol.ColorOrange.RGB()}, ledPayloads(effects))

	assert.Empty(t, c.Tick(now.Add(4*time.Second)), "grace period still running")
	assert.Equal(t, StateMotionDetected, c.State())

	effects = c.Tick(now.Add(6 * time.Second))
	assert.Equal(t, StateAlarmActive, c.State())
	assert.False(t, c.ManuallyArmed())
	assert.Contains(t, sentOpcodes(effects), protocol.CmdSetBuzzerOn)
	assert.Equal(t, []string{protocol.ColorRed.RGB()}, ledPayloads(effects))
	assert.Contains(t, statuses(effects), EventAlarmTriggered)
}

func TestMotionStoppedCancelsGracePeriod(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now)
	effects := c.HandleMessage(simpleMsg(protocol.MsgMotionStopped), now.Add(2*time.Second))

	assert.Equal(t, StateReady, c.State())
	assert.Contains(t, statuses(effects), EventMotionStopped)
	assert.Equal(t, []string{protocol.ColorOff.RGB()}, ledPayloads(effects))

	assert.Empty(t, c.Tick(now.Add(10*time.Second)), "cancelled grace period must not fire")
	assert.Equal(t, StateReady, c.State())
}

func TestMotionDuringActiveAlarmIsStatusOnly(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleCommand(Command{Type: CommandActivateAlarm}, now)
	require.Equal(t, StateAlarmActive, c.State())

	effects := c.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now)
	assert.Equal(t, StateAlarmActive, c.State())
	assert.Equal(t, []string{EventMotionDetected}, statuses(effects))
	assert.Empty(t, sentOpcodes(effects))

	effects = c.HandleMessage(simpleMsg(protocol.MsgMotionStopped), now)
	assert.Equal(t, StateAlarmActive, c.State())
	assert.Equal(t, []string{EventMotionStopped}, statuses(effects))
	assert.Empty(t, sentOpcodes(effects))
}

func TestMotionWhileAlarmDisabled(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleCommand(Command{Type: CommandDisableAlarm}, now)
	require.Equal(t, StateAlarmDisabled, c.State())

	effects := c.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now)
	assert.Equal(t, StateAlarmDisabled, c.State())
	assert.Equal(t, []string{EventMotionDetected}, statuses(effects))

	assert.Empty(t, c.Tick(now.Add(10*time.Second)), "no grace timer while disabled")
	assert.Equal(t, StateAlarmDisabled, c.State())
}

func TestManualAlarmBlocksRFIDDisable(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleCommand(Command{Type: CommandActivateAlarm}, now)
	assert.Equal(t, StateAlarmActive, c.State())
	assert.True(t, c.ManuallyArmed())
	assert.Contains(t, statuses(effects), EventAlarmTriggered)
	assert.Contains(t, statuses(effects), AckActivateAlarm)

	effects = c.HandleAuthResult(AuthSuccess, now.Add(time.Second))
	assert.Equal(t, StateAlarmActive, c.State(), "RFID must not override a manually armed alarm")
	assert.True(t, c.ManuallyArmed())
	assert.Contains(t, statuses(effects), EventAuthSuccessBlocked)
	assert.Contains(t, auths(effects), AckAuthSuccess)
	assert.NotContains(t, sentOpcodes(effects), protocol.CmdSetBuzzerOff, "buzzer must stay on")
}

func TestAuthSuccessDisablesMotionAlarm(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now)
	c.Tick(now.Add(6 * time.Second))
	require.Equal(t, StateAlarmActive, c.State())
	require.False(t, c.ManuallyArmed())

	at := now.Add(7 * time.Second)
	effects := c.HandleAuthResult(AuthSuccess, at)
	assert.Equal(t, StateAlarmDisabled, c.State())
	assert.Equal(t, DisableNone, c.DisableMode())
	assert.Contains(t, sentOpcodes(effects), protocol.CmdSetBuzzerOff)
	assert.Equal(t, []string{protocol.ColorGreen.RGB()}, ledPayloads(effects))
	assert.Contains(t, auths(effects), AckAuthSuccess)
	assert.Contains(t, statuses(effects), EventAlarmDisabledRFID)

	// Untimed disable re-arms on its own after the legacy duration.
	assert.Empty(t, c.Tick(at.Add(59*time.Second)))
	effects = c.Tick(at.Add(61 * time.Second))
	assert.Equal(t, StateReady, c.State())
	assert.Contains(t, statuses(effects), EventAlarmRearmed)
}

func TestAuthFailureBlinksRed(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleAuthResult(AuthFailure, now)
	assert.Contains(t, auths(effects), AckAuthFailed)
	assert.Contains(t, statuses(effects), EventAuthFailed)

	payloads := ledPayloads(effects)
	interval := DefaultConfig().BlinkInterval
	for i := 1; i <= 10; i++ {
		payloads = append(payloads, ledPayloads(c.Tick(now.Add(time.Duration(i)*interval)))...)
	}

	on := protocol.ColorRed.RGB()
	off := protocol.ColorOff.RGB()
	assert.Equal(t, []string{on, off, on, off, on, off, off}, payloads,
		"three on phases at blink cadence, then the LED is forced off")
}

func TestDirectLEDWritePreemptsBlink(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleAuthResult(AuthFailure, now)

	// A motion event sets the LED directly, which must cancel the blink.
	c.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now.Add(50*time.Millisecond))

	for i := 1; i <= 10; i++ {
		effects := c.Tick(now.Add(time.Duration(i) * 100 * time.Millisecond))
		assert.Empty(t, ledPayloads(effects), "cancelled blink must not touch the LED")
	}
}

func TestTimedDisableExpires(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleCommand(Command{Type: CommandDisableAlarmTimed, Minutes: 1}, now)
	assert.Equal(t, StateAlarmDisabled, c.State())
	assert.Equal(t, DisableTimed, c.DisableMode())
	assert.Contains(t, statuses(effects), AckDisableAlarm)

	assert.Empty(t, c.Tick(now.Add(59*time.Second)))
	assert.Equal(t, StateAlarmDisabled, c.State())

	effects = c.Tick(now.Add(61 * time.Second))
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, DisableNone, c.DisableMode())
	assert.Contains(t, statuses(effects), EventStateReady)
	assert.Contains(t, sentOpcodes(effects), protocol.CmdSetBuzzerOff)
}

func TestPermanentDisableNeverExpires(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleCommand(Command{Type: CommandDisableAlarmPermanent}, now)
	assert.Equal(t, StateAlarmDisabled, c.State())
	assert.Equal(t, DisablePermanent, c.DisableMode())

	assert.Empty(t, c.Tick(now.Add(24*time.Hour)))
	assert.Equal(t, StateAlarmDisabled, c.State())
}

func TestResetAlarmIsIdempotentFromReady(t *testing.T) {
	c := newTestController()
	now := time.Now()

	for i := 0; i < 3; i++ {
		effects := c.HandleCommand(Command{Type: CommandResetAlarm}, now)
		assert.Equal(t, StateReady, c.State())
		assert.False(t, c.ManuallyArmed())
		assert.Contains(t, statuses(effects), EventAlarmReset)
		assert.Contains(t, statuses(effects), EventStateReady)
	}
}

func TestDisableAlarmClearsManualArm(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleCommand(Command{Type: CommandActivateAlarm}, now)
	require.True(t, c.ManuallyArmed())

	c.HandleCommand(Command{Type: CommandDisableAlarm}, now)
	assert.Equal(t, StateAlarmDisabled, c.State())
	assert.False(t, c.ManuallyArmed())
}

func TestManuallyArmedInvariant(t *testing.T) {
	c := newTestController()
	now := time.Now()

	steps := []func(){
		func() { c.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now) },
		func() { c.Tick(now.Add(6 * time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandActivateAlarm}, now.Add(7*time.Second)) },
		func() { c.HandleAuthResult(AuthSuccess, now.Add(8*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandResetAlarm}, now.Add(9*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandActivateAlarm}, now.Add(10*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandDisableAlarm}, now.Add(11*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandEnableAlarm}, now.Add(12*time.Second)) },
		func() { c.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now.Add(13*time.Second)) },
		func() { c.Tick(now.Add(20 * time.Second)) },
		func() { c.HandleAuthResult(AuthFailure, now.Add(21*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandActivateAlarm}, now.Add(22*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandAbort}, now.Add(23*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandDisableAlarmPermanent}, now.Add(24*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandAbort}, now.Add(25*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandActivateAlarm}, now.Add(26*time.Second)) },
		func() { c.HandleCommand(Command{Type: CommandRFIDWritePrepare, Key: "k"}, now.Add(27*time.Second)) },
	}

	for i, step := range steps {
		step()
		if c.ManuallyArmed() {
			assert.Equal(t, StateAlarmActive, c.State(),
				"step %d: ManuallyArmed requires StateAlarmActive", i)
		}
		if c.DisableMode() != DisableNone {
			assert.Equal(t, StateAlarmDisabled, c.State(),
				"step %d: a disable mode requires StateAlarmDisabled", i)
		}
	}
}

func TestDeviceHeartbeatLifecycle(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleMessage(simpleMsg(protocol.MsgHeartbeat), now)
	assert.True(t, c.DeviceConnected())
	assert.Equal(t, []string{EventDeviceHeartbeat, EventDeviceConnected}, statuses(effects))

	effects = c.HandleMessage(simpleMsg(protocol.MsgHeartbeat), now.Add(10*time.Second))
	assert.Equal(t, []string{EventDeviceHeartbeat}, statuses(effects), "no reconnect event while connected")

	effects = c.Tick(now.Add(41 * time.Second))
	assert.False(t, c.DeviceConnected())
	assert.Contains(t, statuses(effects), EventDeviceDisconnected)

	assert.Empty(t, c.Tick(now.Add(50*time.Second)), "disconnect is reported once")

	effects = c.HandleMessage(simpleMsg(protocol.MsgHeartbeat), now.Add(60*time.Second))
	assert.True(t, c.DeviceConnected())
	assert.Equal(t, []string{EventDeviceHeartbeat, EventDeviceConnected}, statuses(effects))
}

func TestRFIDReadRequestsAuthentication(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleMessage(dataMsg(protocol.MsgRFIDReadSuccess, "key-1\x00 "), now)
	assert.Equal(t, "key-1", c.PendingSecret(), "payload is normalized")
	assert.Equal(t, []string{AuthRequestPrefix + "key-1"}, auths(effects))

	// A new read overwrites the pending secret.
	c.HandleMessage(dataMsg(protocol.MsgRFIDReadSuccess, "key-2"), now)
	assert.Equal(t, "key-2", c.PendingSecret())

	c.HandleAuthResult(AuthFailure, now)
	assert.Empty(t, c.PendingSecret(), "auth result clears the pending secret")
}

func TestRFIDWriteFlow(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleCommand(Command{Type: CommandRFIDWritePrepare, Key: "new-key"}, now)
	assert.Equal(t, StateRFIDWriteMode, c.State())
	assert.Contains(t, statuses(effects), EventWritePreparedPrefix+"new-key")
	require.Len(t, sentOpcodes(effects), 1)
	assert.Equal(t, protocol.CmdRFIDWritePrepare, sentOpcodes(effects)[0])

	effects = c.HandleCommand(Command{Type: CommandRFIDWriteConfirm}, now)
	assert.Contains(t, sentOpcodes(effects), protocol.CmdRFIDWriteConfirm)
	assert.Contains(t, statuses(effects), EventWriteActive)

	effects = c.HandleCommand(Command{Type: CommandRFIDWriteInitialize}, now)
	assert.Contains(t, statuses(effects), AckWriteInitialize)

	effects = c.HandleMessage(simpleMsg(protocol.MsgRFIDWriteCompleted), now)
	assert.Equal(t, StateReady, c.State())
	assert.Contains(t, statuses(effects), EventWriteCompleted)
	assert.Equal(t, []string{protocol.ColorOff.RGB()}, ledPayloads(effects))
}

func TestRFIDWriteConfirmWithoutPrepare(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleCommand(Command{Type: CommandRFIDWriteConfirm}, now)
	assert.Equal(t, StateReady, c.State())
	assert.Empty(t, sentOpcodes(effects), "nothing is forwarded to the device")
	assert.Equal(t, []string{ErrorWriteNotPrepared}, statuses(effects))

	assert.Empty(t, c.HandleCommand(Command{Type: CommandRFIDWriteInitialize}, now))
}

func TestAbortReturnsToReady(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleCommand(Command{Type: CommandRFIDWritePrepare, Key: "k"}, now)
	require.Equal(t, StateRFIDWriteMode, c.State())

	effects := c.HandleCommand(Command{Type: CommandAbort}, now)
	assert.Equal(t, StateReady, c.State())
	assert.Contains(t, sentOpcodes(effects), protocol.CmdRFIDNormalMode)
	assert.Contains(t, statuses(effects), AckAbort)
}

func TestAbortClearsAlarmFlags(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleCommand(Command{Type: CommandActivateAlarm}, now)
	require.True(t, c.ManuallyArmed())

	c.HandleCommand(Command{Type: CommandAbort}, now)
	assert.Equal(t, StateReady, c.State())
	assert.False(t, c.ManuallyArmed())

	c.HandleCommand(Command{Type: CommandDisableAlarmPermanent}, now)
	require.Equal(t, DisablePermanent, c.DisableMode())

	c.HandleCommand(Command{Type: CommandAbort}, now)
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, DisableNone, c.DisableMode())
}

func TestRFIDWritePrepareClearsAlarmFlags(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleCommand(Command{Type: CommandActivateAlarm}, now)
	require.True(t, c.ManuallyArmed())

	c.HandleCommand(Command{Type: CommandRFIDWritePrepare, Key: "k"}, now)
	assert.Equal(t, StateRFIDWriteMode, c.State())
	assert.False(t, c.ManuallyArmed())
	assert.Equal(t, DisableNone, c.DisableMode())

	// A motion grace timer pending at prepare time must not fire later.
	c2 := newTestController()
	c2.HandleMessage(simpleMsg(protocol.MsgMotionDetected), now)
	c2.HandleCommand(Command{Type: CommandRFIDWritePrepare, Key: "k"}, now.Add(time.Second))
	assert.Empty(t, c2.Tick(now.Add(10*time.Second)))
	assert.Equal(t, StateRFIDWriteMode, c2.State())
}

func TestDeviceStatusRelay(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleMessage(simpleMsg(protocol.MsgStatusReady), now)
	assert.Equal(t, []string{EventStatusReady}, statuses(effects))

	effects = c.HandleMessage(dataMsg(protocol.MsgStatusUpdate, "uptime=42"), now)
	assert.Equal(t, []string{EventDeviceStatusPrefix + "uptime=42"}, statuses(effects))

	effects = c.HandleMessage(simpleMsg(protocol.MsgRFIDReadFailed), now)
	assert.Equal(t, []string{EventRFIDReadFailed}, statuses(effects))

	effects = c.HandleMessage(simpleMsg(protocol.MsgRFIDWriteSuccess), now)
	assert.Equal(t, []string{EventWriteSuccess}, statuses(effects))

	effects = c.HandleMessage(simpleMsg(protocol.MsgRFIDWriteFailed), now)
	assert.Equal(t, []string{EventWriteFailed}, statuses(effects))
}

func TestButtonPressResetsAlarm(t *testing.T) {
	c := newTestController()
	now := time.Now()

	c.HandleCommand(Command{Type: CommandActivateAlarm}, now)
	effects := c.HandleMessage(simpleMsg(protocol.MsgButtonPressed), now)

	assert.Equal(t, StateReady, c.State())
	assert.False(t, c.ManuallyArmed())
	assert.Contains(t, statuses(effects), EventAlarmReset)
	assert.Contains(t, sentOpcodes(effects), protocol.CmdSetBuzzerOff)
}

func TestUnknownDeviceOpcodeIgnored(t *testing.T) {
	c := newTestController()
	now := time.Now()

	effects := c.HandleMessage(simpleMsg(protocol.Opcode(28)), now)
	assert.Empty(t, effects)
	assert.Equal(t, StateReady, c.State())
}
