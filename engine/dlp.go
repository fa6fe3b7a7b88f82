package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	dlpPing   = 0x27 // '
	dlpPong   = 'Q'
	dlpBinary = 0x5C // \

	PulseWidth = 5 * time.Millisecond
)

// Trigger marks events on external recording equipment. Set and Unset
// return without waiting; Pulse holds the line for PulseWidth.
type Trigger interface {
	Set(line TriggerLine)
	Unset(line TriggerLine)
	Pulse(line TriggerLine)
}

// DLPIO8G drives the digital lines of a DLP-IO8-G USB box.
type DLPIO8G struct {
	port  io.ReadWriteCloser
	sleep func(time.Duration)
}

func OpenDLPIO8G(device string, baudrate int) (*DLPIO8G, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return NewDLPIO8G(port)
}

// NewDLPIO8G pings the device on port and switches it to binary mode. The
// port is closed if either step fails.
func NewDLPIO8G(port io.ReadWriteCloser) (*DLPIO8G, error) {
	d := &DLPIO8G{port: port, sleep: time.Sleep}

	if !d.Ping() {
		port.Close()
		return nil, fmt.Errorf("device did not respond to ping correctly")
	}

	if _, err := port.Write([]byte{dlpBinary}); err != nil {
		port.Close()
		return nil, fmt.Errorf("binary mode: %w", err)
	}

	return d, nil
}

func (d *DLPIO8G) Close() {
	if d.port != nil {
		d.port.Close()
	}
}

func (d *DLPIO8G) Ping() bool {
	if _, err := d.port.Write([]byte{dlpPing}); err != nil {
		return false
	}

	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	return err == nil && n == 1 && buf[0] == dlpPong
}

func (d *DLPIO8G) Set(line TriggerLine) {
	if _, err := d.port.Write([]byte(line)); err != nil {
		log.Warn().Err(err).Str("lines", string(line)).Msg("dlp set failed")
	}
}

func (d *DLPIO8G) Unset(line TriggerLine) {
	if _, err := d.port.Write(unsetCommand(string(line))); err != nil {
		log.Warn().Err(err).Str("lines", string(line)).Msg("dlp unset failed")
	}
}

// Pulse raises line for PulseWidth. It blocks, so it is only used where
// nothing is waiting to be drawn.
func (d *DLPIO8G) Pulse(line TriggerLine) {
	d.Set(line)
	d.sleep(PulseWidth)
	d.Unset(line)
}

// unsetCommand maps line digits to the device's clear commands.
func unsetCommand(lines string) []byte {
	const clearKeys = "QWERTYUI"

	cmd := []byte(lines)
	for i, c := range cmd {
		if c >= '1' && c <= '8' {
			cmd[i] = clearKeys[c-'1']
		}
	}
	return cmd
}

type noTrigger struct{}

func (noTrigger) Set(TriggerLine) {}

func (noTrigger) Unset(TriggerLine) {}

func (noTrigger) Pulse(TriggerLine) {}
