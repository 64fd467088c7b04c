// Package led drives non-blocking blink sequences on the device's status
// LED. The blinker owns no I/O: each tick returns the commands to send.
package led

import (
	"time"

	"github.com/kgames/security2mqtt/internal/protocol"
	"github.com/kgames/security2mqtt/internal/timer"
)

// DefaultInterval is the length of one on or off phase.
const DefaultInterval = 200 * time.Millisecond

// Blinker runs one blink sequence at a time. Starting a new sequence or
// cancelling preempts the one in flight.
type Blinker struct {
	interval time.Duration

	active     bool
	color      protocol.Color
	phases     int // total on/off phases in the sequence
	count      int // phases completed so far
	isOn       bool
	nextToggle timer.Deadline
}

func NewBlinker(interval time.Duration) *Blinker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Blinker{interval: interval}
}

// Start begins blinking the given color n times (each blink is an on phase
// followed by an off phase). The LED is lit immediately; the returned
// command must be sent to the device.
func (b *Blinker) Start(color protocol.Color, blinks int, now time.Time) protocol.Command {
	b.active = true
	b.color = color
	b.phases = blinks * 2
	b.count = 0
	b.isOn = true
	b.nextToggle = timer.After(now, b.interval)
	return protocol.SetLEDCommand(color)
}

// Tick advances the sequence. It returns at most one LED command: a toggle
// when a phase boundary is due, or the forced off that ends the sequence.
func (b *Blinker) Tick(now time.Time) []protocol.Command {
	if !b.active || !b.nextToggle.Due(now) {
		return nil
	}

	b.count++
	b.nextToggle = timer.After(now, b.interval)

	if b.count >= b.phases {
		b.reset()
		return []protocol.Command{protocol.SetLEDCommand(protocol.ColorOff)}
	}

	if b.isOn {
		b.isOn = false
		return []protocol.Command{protocol.SetLEDCommand(protocol.ColorOff)}
	}
	b.isOn = true
	return []protocol.Command{protocol.SetLEDCommand(b.color)}
}

// Cancel aborts any sequence in flight. Direct LED writes must cancel first
// so the blinker does not fight the new color.
func (b *Blinker) Cancel() {
	b.reset()
}

func (b *Blinker) Active() bool {
	return b.active
}

func (b *Blinker) reset() {
	b.active = false
	b.isOn = false
	b.count = 0
	b.phases = 0
	b.nextToggle.Clear()
}
