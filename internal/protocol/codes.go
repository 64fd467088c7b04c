package protocol

import "fmt"

// Opcode is a single-byte message or command code on the serial link.
// Codes 1-12 are device-to-gateway notifications, 20-27 are
// gateway-to-device commands.
type Opcode byte

const (
	MsgStatusReady        Opcode = 1
	MsgMotionDetected     Opcode = 2
	MsgMotionStopped      Opcode = 3
	MsgRFIDDetected       Opcode = 4
	MsgButtonPressed      Opcode = 5
	MsgRFIDReadSuccess    Opcode = 6
	MsgRFIDReadFailed     Opcode = 7
	MsgRFIDWriteSuccess   Opcode = 8
	MsgRFIDWriteFailed    Opcode = 9
	MsgRFIDWriteCompleted Opcode = 10
	MsgStatusUpdate       Opcode = 11
	MsgHeartbeat          Opcode = 12
)

const (
	CmdSetLEDRGB        Opcode = 20 // payload "R,G,B"
	CmdSetBuzzerOn      Opcode = 21
	CmdSetBuzzerOff     Opcode = 22
	CmdRFIDWritePrepare Opcode = 23 // payload is the secret key
	CmdRFIDWriteConfirm Opcode = 24
	CmdRFIDNormalMode   Opcode = 25
	CmdAck              Opcode = 26
	CmdRequestStatus    Opcode = 27
)

// Opcodes in [MinOpcode, MaxOpcode] may start either a single-byte frame or
// an opcode:payload\n frame; the decoder disambiguates.
const (
	MinOpcode Opcode = 1
	MaxOpcode Opcode = 28
)

func (o Opcode) String() string {
	switch o {
	case MsgStatusReady:
		return "STATUS_READY"
	case MsgMotionDetected:
		return "MOTION_DETECTED"
	case MsgMotionStopped:
		return "MOTION_STOPPED"
	case MsgRFIDDetected:
		return "RFID_DETECTED"
	case MsgButtonPressed:
		return "BUTTON_PRESSED"
	case MsgRFIDReadSuccess:
		return "RFID_READ_SUCCESS"
	case MsgRFIDReadFailed:
		return "RFID_READ_FAILED"
	case MsgRFIDWriteSuccess:
		return "RFID_WRITE_SUCCESS"
	case MsgRFIDWriteFailed:
		return "RFID_WRITE_FAILED"
	case MsgRFIDWriteCompleted:
		return "RFID_WRITE_COMPLETED"
	case MsgStatusUpdate:
		return "STATUS_UPDATE"
	case MsgHeartbeat:
		return "HEARTBEAT"
	case CmdSetLEDRGB:
		return "SET_LED_RGB"
	case CmdSetBuzzerOn:
		return "SET_BUZZER_ON"
	case CmdSetBuzzerOff:
		return "SET_BUZZER_OFF"
	case CmdRFIDWritePrepare:
		return "RFID_WRITE_PREPARE"
	case CmdRFIDWriteConfirm:
		return "RFID_WRITE_CONFIRM"
	case CmdRFIDNormalMode:
		return "RFID_NORMAL_MODE"
	case CmdAck:
		return "ACK"
	case CmdRequestStatus:
		return "REQUEST_STATUS"
	default:
		return fmt.Sprintf("Unknown Opcode(%d)", byte(o))
	}
}
