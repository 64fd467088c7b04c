package security

import "fmt"

// State is the single mode variable of the security controller. Exactly one
// value is live at any instant.
type State int

const (
	StateReady State = iota
	StateMotionDetected
	StateAlarmActive
	StateAlarmDisabled
	StateRFIDWriteMode
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateMotionDetected:
		return "MOTION_DETECTED"
	case StateAlarmActive:
		return "ALARM_ACTIVE"
	case StateAlarmDisabled:
		return "ALARM_DISABLED"
	case StateRFIDWriteMode:
		return "RFID_WRITE_MODE"
	default:
		return fmt.Sprintf("Unknown State(%d)", int(s))
	}
}

// DisableMode qualifies StateAlarmDisabled. DisableNone is the legacy
// untimed disable that re-arms after a fixed duration.
type DisableMode int

const (
	DisableNone DisableMode = iota
	DisablePermanent
	DisableTimed
)

func (m DisableMode) String() string {
	switch m {
	case DisableNone:
		return "None"
	case DisablePermanent:
		return "Permanent"
	case DisableTimed:
		return "Timed"
	default:
		return fmt.Sprintf("Unknown DisableMode(%d)", int(m))
	}
}
