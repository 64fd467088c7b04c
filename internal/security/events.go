package security

// Text payloads on the outbound status topic. These are the wire format the
// control plane matches on; do not rename (including the INITALIZE typo).
const (
	EventStatusReady        = "STATUS_READY"
	EventMotionDetected     = "MOTION_DETECTED"
	EventMotionStopped      = "MOTION_STOPPED"
	EventAlarmTriggered     = "ALARM_TRIGGERED"
	EventAlarmReset         = "ALARM_RESET"
	EventAlarmRearmed       = "ALARM_REARMED"
	EventAlarmDisabledRFID  = "ALARM_DISABLED_RFID"
	EventStateReady         = "SECURITY_STATE:READY"
	EventAuthFailed         = "AUTH_FAILED"
	EventAuthSuccessBlocked = "AUTH_SUCCESS_BLOCKED"
	EventRFIDReadFailed     = "RFID_READ_FAILED"
	EventWriteSuccess       = "STATUS_RFID_WRITE_SUCCESS"
	EventWriteFailed        = "STATUS_RFID_WRITE_FAILED"
	EventWriteCompleted     = "STATUS_RFID_WRITE_COMPLETED"
	EventWriteActive        = "STATUS_RFID_WRITE_ACTIVE"

	EventDeviceHeartbeat    = "ARDUINO_HEARTBEAT"
	EventDeviceConnected    = "ARDUINO_CONNECTED"
	EventDeviceDisconnected = "ARDUINO_DISCONNECTED"
	EventGatewayHeartbeat   = "PICO_HEARTBEAT"
	EventGatewayReady       = "PICO_READY"

	AckDisableAlarm    = "ACK_CMD_DISABLE_ALARM"
	AckActivateAlarm   = "ACK_CMD_ACTIVATE_ALARM"
	AckAbort           = "ACK_CMD_ABORT"
	AckWriteInitialize = "ACK_CMD_RFID_WRITE_INITALIZE"

	ErrorWriteNotPrepared = "ERROR_RFID_WRITE_NOT_PREPARED"
	ErrorUnknownCommand   = "ERROR_UNKNOWN_COMMAND"

	EventWritePreparedPrefix = "STATUS_RFID_WRITE_PREPARED:"
	EventDeviceStatusPrefix  = "ARDUINO_STATUS:"
)

// Payloads on the auth-request topic.
const (
	AuthRequestPrefix = "AUTH_REQUEST:"
	AckAuthSuccess    = "ACK_AUTH_SUCCESS"
	AckAuthFailed     = "ACK_AUTH_FAILED"
)
