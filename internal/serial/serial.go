// Package serial opens the byte link to the downstream microcontroller.
package serial

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is the subset of the serial port the gateway loop uses. Reads return
// (0, nil) when no data arrives within the read timeout.
type Port interface {
	io.ReadWriteCloser
}

// readTimeout keeps Read from parking the gateway loop: absence of data is
// not an error.
const readTimeout = time.Millisecond

// Open opens the serial device at the given baud rate, 8N1.
func Open(device string, baud int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial device %s: %v", device, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %v", device, err)
	}

	return port, nil
}
