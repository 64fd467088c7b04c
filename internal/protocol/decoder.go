package protocol

import (
	"time"

	"github.com/kgames/security2mqtt/internal/log"
	"github.com/kgames/security2mqtt/internal/timer"
)

// DefaultLookahead is the disambiguation window: how long the decoder waits
// for a ':' before committing a lone opcode byte as a single-byte frame.
const DefaultLookahead = 10 * time.Millisecond

// maxPayload bounds payload accumulation so a missing terminator cannot grow
// the buffer without limit.
const maxPayload = 512

type decoderState int

const (
	stateIdle decoderState = iota
	stateLookahead
	statePayload
)

// Decoder reassembles the raw serial byte stream into Messages. It never
// blocks: a pending lookahead carries an explicit deadline and is resolved
// either by the next byte or by Tick from the gateway loop.
type Decoder struct {
	log       *log.Logger
	lookahead time.Duration

	state    decoderState
	opcode   Opcode
	deadline timer.Deadline
	payload  []byte
}

func NewDecoder(lookahead time.Duration, logger *log.Logger) *Decoder {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &Decoder{
		log:       logger,
		lookahead: lookahead,
	}
}

// Feed processes one received byte and returns any frames it completes.
func (d *Decoder) Feed(b byte, now time.Time) []Message {
	return d.feed(b, now, nil)
}

// Tick resolves a pending lookahead whose window has elapsed. It must be
// called regularly while bytes may be outstanding.
func (d *Decoder) Tick(now time.Time) []Message {
	if d.state != stateLookahead || !d.deadline.Due(now) {
		return nil
	}
	msg := d.commitSimple()
	return []Message{msg}
}

func (d *Decoder) feed(b byte, now time.Time, msgs []Message) []Message {
	switch d.state {
	case statePayload:
		if b == terminator {
			msg := Message{Opcode: d.opcode, HasData: true, Data: string(d.payload)}
			d.reset()
			return append(msgs, msg)
		}
		if len(d.payload) >= maxPayload {
			d.log.Warning("Dropping oversized frame for opcode %d", byte(d.opcode))
			d.reset()
			return msgs
		}
		d.payload = append(d.payload, b)
		return msgs

	case stateLookahead:
		if d.deadline.Due(now) {
			// Window elapsed before this byte arrived: the pending opcode
			// stands alone and b starts a new frame.
			msgs = append(msgs, d.commitSimple())
			return d.feed(b, now, msgs)
		}
		switch b {
		case delimiter:
			d.state = statePayload
			d.payload = d.payload[:0]
			return msgs
		case terminator:
			// Opcode followed by a bare newline is not a valid frame.
			d.log.Warning("Malformed frame: opcode %d followed by newline, dropping", byte(d.opcode))
			d.reset()
			return msgs
		default:
			// Not a delimiter: the pending opcode was a complete message and
			// b must be preserved as the start of the next frame.
			msgs = append(msgs, d.commitSimple())
			return d.feed(b, now, msgs)
		}

	default: // stateIdle
		op := Opcode(b)
		if op < MinOpcode || op > MaxOpcode {
			d.log.Debug("Dropping unexpected byte outside frame: %d (0x%02x)", b, b)
			return msgs
		}
		d.state = stateLookahead
		d.opcode = op
		d.deadline = timer.After(now, d.lookahead)
		return msgs
	}
}

func (d *Decoder) commitSimple() Message {
	msg := Message{Opcode: d.opcode}
	d.reset()
	return msg
}

func (d *Decoder) reset() {
	d.state = stateIdle
	d.opcode = 0
	d.deadline.Clear()
	d.payload = d.payload[:0]
}
