package security

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandType enumerates the control-plane commands the controller accepts.
type CommandType int

const (
	CommandDisableAlarm CommandType = iota
	CommandActivateAlarm
	CommandResetAlarm
	CommandDisableAlarmPermanent
	CommandDisableAlarmTimed
	CommandEnableAlarm
	CommandRFIDWritePrepare
	CommandRFIDWriteConfirm
	CommandRFIDWriteInitialize
	CommandAbort
)

func (t CommandType) String() string {
	switch t {
	case CommandDisableAlarm:
		return "CMD_DISABLE_ALARM"
	case CommandActivateAlarm:
		return "CMD_ACTIVATE_ALARM"
	case CommandResetAlarm:
		return "CMD_RESET_ALARM"
	case CommandDisableAlarmPermanent:
		return "CMD_DISABLE_ALARM_PERMANENT"
	case CommandDisableAlarmTimed:
		return "CMD_DISABLE_ALARM_TIMED"
	case CommandEnableAlarm:
		return "CMD_ENABLE_ALARM"
	case CommandRFIDWritePrepare:
		return "CMD_RFID_WRITE_PREPARE"
	case CommandRFIDWriteConfirm:
		return "CMD_RFID_WRITE_CONFIRM"
	case CommandRFIDWriteInitialize:
		return "CMD_RFID_WRITE_INITALIZE"
	case CommandAbort:
		return "CMD_ABORT"
	default:
		return fmt.Sprintf("Unknown CommandType(%d)", int(t))
	}
}

// Command is one parsed control-plane command. Minutes is set for
// CommandDisableAlarmTimed, Key for CommandRFIDWritePrepare.
type Command struct {
	Type    CommandType
	Minutes int
	Key     string
}

const (
	timedPrefix   = "CMD_DISABLE_ALARM_TIMED:"
	preparePrefix = "CMD_RFID_WRITE_PREPARE:"
)

// ParseCommand parses the text payload of the command topic.
func ParseCommand(s string) (Command, error) {
	switch s {
	case "CMD_DISABLE_ALARM":
		return Command{Type: CommandDisableAlarm}, nil
	case "CMD_ACTIVATE_ALARM":
		return Command{Type: CommandActivateAlarm}, nil
	case "CMD_RESET_ALARM":
		return Command{Type: CommandResetAlarm}, nil
	case "CMD_DISABLE_ALARM_PERMANENT":
		return Command{Type: CommandDisableAlarmPermanent}, nil
	case "CMD_ENABLE_ALARM":
		return Command{Type: CommandEnableAlarm}, nil
	case "CMD_RFID_WRITE_CONFIRM":
		return Command{Type: CommandRFIDWriteConfirm}, nil
	case "CMD_RFID_WRITE_INITALIZE":
		return Command{Type: CommandRFIDWriteInitialize}, nil
	case "CMD_ABORT":
		return Command{Type: CommandAbort}, nil
	}

	if rest, ok := strings.CutPrefix(s, timedPrefix); ok {
		minutes, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return Command{}, fmt.Errorf("invalid minutes in %q: %v", s, err)
		}
		if minutes <= 0 {
			return Command{}, fmt.Errorf("invalid minutes in %q: must be positive", s)
		}
		return Command{Type: CommandDisableAlarmTimed, Minutes: minutes}, nil
	}

	if key, ok := strings.CutPrefix(s, preparePrefix); ok {
		if key == "" {
			return Command{}, fmt.Errorf("missing key in %q", s)
		}
		return Command{Type: CommandRFIDWritePrepare, Key: key}, nil
	}

	return Command{}, fmt.Errorf("unknown command %q", s)
}

// AuthResult is the control plane's answer to an AUTH_REQUEST.
type AuthResult int

const (
	AuthSuccess AuthResult = iota
	AuthFailure
)

// ParseAuthResult parses the text payload of the auth-response topic.
func ParseAuthResult(s string) (AuthResult, error) {
	switch s {
	case "AUTH_SUCCESS":
		return AuthSuccess, nil
	case "AUTH_FAILED":
		return AuthFailure, nil
	default:
		return 0, fmt.Errorf("unknown auth result %q", s)
	}
}
