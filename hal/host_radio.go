//go:build !tinygo

package hal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
)

const (
	rylrDefaultBaud = 115200
	rylrMaxPayload  = 240
	rylrCmdTimeout  = 1 * time.Second
)

var errModemClosed = errors.New("rylr896: line closed")

// serialRadio is an RYLR896 LoRa modem on a host serial port.
type serialRadio struct {
	port string
	baud int
}

func newSerialRadio(port string, baud int) *serialRadio {
	if baud <= 0 {
		baud = rylrDefaultBaud
	}
	return &serialRadio{port: port, baud: baud}
}

func (r *serialRadio) Variant() RadioVariant { return RadioRYLR896 }

func (r *serialRadio) Open() (Transceiver, error) {
	conn, err := serial.OpenPort(&serial.Config{Name: r.port, Baud: r.baud})
	if err != nil {
		return nil, fmt.Errorf("rylr896 %s: %w", r.port, err)
	}
	m := newATModem(conn)
	if err := m.configure(); err != nil {
		conn.Close()
		return nil, err
	}
	return m, nil
}

// atModem speaks the RYLR896 AT command set over a byte stream.
//
// A reader goroutine splits the stream into lines and routes them: +RCV
// lines go to the receive queue, everything else to the reply queue. Tx and
// Rx therefore never consume each other's lines and may be in flight at the
// same time; commands are serialized so each reply matches its command.
type atModem struct {
	cmdMu sync.Mutex
	w     io.Writer

	replies chan string
	frames  chan rxFrame

	mu  sync.Mutex
	err error
}

type rxFrame struct {
	data []byte
	err  error
}

func newATModem(rw io.ReadWriter) *atModem {
	m := &atModem{
		w:       rw,
		replies: make(chan string, 4),
		frames:  make(chan rxFrame, 16),
	}
	go m.readLoop(rw)
	return m
}

func (m *atModem) readLoop(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "+RCV="):
			data, err := parseRCV(line)
			select {
			case m.frames <- rxFrame{data: data, err: err}:
			default:
				// Nobody is receiving; the oldest frames win.
			}
		default:
			select {
			case m.replies <- line:
			default:
				// Unsolicited status lines nobody waits for.
			}
		}
	}
	m.mu.Lock()
	m.err = sc.Err()
	if m.err == nil {
		m.err = errModemClosed
	}
	m.mu.Unlock()
	close(m.replies)
	close(m.frames)
}

func (m *atModem) closedErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *atModem) configure() error {
	if err := m.command("AT", rylrCmdTimeout); err != nil {
		return fmt.Errorf("%w: %w", ErrRadioNotFound, err)
	}
	return m.command("AT+BAND="+strconv.Itoa(LoRaFrequencyHz), rylrCmdTimeout)
}

// command writes cmd and waits for +OK or +ERR.
func (m *atModem) command(cmd string, timeout time.Duration) error {
	m.cmdMu.Lock()
	defer m.cmdMu.Unlock()

	// Drop replies left over from a command that timed out.
	for drained := false; !drained; {
		select {
		case _, ok := <-m.replies:
			drained = !ok
		default:
			drained = true
		}
	}

	if _, err := io.WriteString(m.w, cmd+"\r\n"); err != nil {
		return fmt.Errorf("rylr896 %s: %w", cmd, err)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case line, ok := <-m.replies:
			if !ok {
				return fmt.Errorf("rylr896 %s: %w", cmd, m.closedErr())
			}
			switch {
			case line == "+OK":
				return nil
			case strings.HasPrefix(line, "+ERR="):
				return fmt.Errorf("rylr896 %s: %s", cmd, line)
			}
		case <-deadline.C:
			return fmt.Errorf("rylr896 %s: no reply", cmd)
		}
	}
}

func (m *atModem) Tx(payload []byte, timeout time.Duration) error {
	if len(payload) == 0 || len(payload) > rylrMaxPayload {
		return fmt.Errorf("rylr896: payload of %d bytes", len(payload))
	}
	if timeout <= 0 {
		timeout = rylrCmdTimeout
	}
	return m.command(fmt.Sprintf("AT+SEND=0,%d,%s", len(payload), payload), timeout)
}

// Rx waits up to timeout for a frame. A closed line is a bus error, not a
// timeout.
func (m *atModem) Rx(timeout time.Duration) ([]byte, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case f, ok := <-m.frames:
		if !ok {
			return nil, fmt.Errorf("rylr896 rx: %w", m.closedErr())
		}
		return f.data, f.err
	case <-deadline.C:
		return nil, ErrRxTimeout
	}
}

// parseRCV decodes "+RCV=<addr>,<len>,<data>,<rssi>,<snr>". The data field
// may itself contain commas, so it is cut by length.
func parseRCV(line string) ([]byte, error) {
	rest, ok := strings.CutPrefix(line, "+RCV=")
	if !ok {
		return nil, ErrBadFrame
	}
	addr, rest, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrBadFrame
	}
	if _, err := strconv.ParseUint(addr, 10, 16); err != nil {
		return nil, ErrBadFrame
	}
	lenField, rest, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrBadFrame
	}
	n, err := strconv.Atoi(lenField)
	if err != nil || n < 0 || n > len(rest) {
		return nil, ErrBadFrame
	}
	data, tail := rest[:n], rest[n:]
	rssi, snr, ok := strings.Cut(strings.TrimPrefix(tail, ","), ",")
	if !ok || !strings.HasPrefix(tail, ",") {
		return nil, ErrBadFrame
	}
	if _, err := strconv.Atoi(rssi); err != nil {
		return nil, ErrBadFrame
	}
	if _, err := strconv.Atoi(snr); err != nil {
		return nil, ErrBadFrame
	}
	return []byte(data), nil
}
