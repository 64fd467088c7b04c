// Package timer provides monotonic-clock interval and deadline checks for
// the controller, the LED driver and the frame decoder. All checks compute
// differences between instants; none of them block or own a goroutine.
package timer

import "time"

// Elapsed reports whether d has passed since the given instant.
func Elapsed(now, since time.Time, d time.Duration) bool {
	return now.Sub(since) >= d
}

// Remaining returns the time left until deadline, or zero if it has passed.
func Remaining(now, deadline time.Time) time.Duration {
	r := deadline.Sub(now)
	if r < 0 {
		return 0
	}
	return r
}

// Deadline is an optional instant. The zero value is unset.
type Deadline struct {
	at  time.Time
	set bool
}

// At returns a Deadline set to the given instant.
func At(t time.Time) Deadline {
	return Deadline{at: t, set: true}
}

// After returns a Deadline d from now.
func After(now time.Time, d time.Duration) Deadline {
	return At(now.Add(d))
}

func (d *Deadline) Set(t time.Time) {
	d.at = t
	d.set = true
}

func (d *Deadline) Clear() {
	*d = Deadline{}
}

func (d Deadline) IsSet() bool {
	return d.set
}

// Due reports whether the deadline is set and has been reached.
func (d Deadline) Due(now time.Time) bool {
	return d.set && !now.Before(d.at)
}

// Remaining returns the time left, or zero if unset or already due.
func (d Deadline) Remaining(now time.Time) time.Duration {
	if !d.set {
		return 0
	}
	return Remaining(now, d.at)
}
