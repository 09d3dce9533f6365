//go:build !tinygo

package hal

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeModem answers AT commands through a pipe the way an RYLR896 does.
type fakeModem struct {
	pr *io.PipeReader
	pw *io.PipeWriter

	mu    sync.Mutex
	sent  []string
	reply func(cmd string) string
}

func newFakeModem(reply func(cmd string) string) *fakeModem {
	pr, pw := io.Pipe()
	return &fakeModem{pr: pr, pw: pw, reply: reply}
}

func (f *fakeModem) Read(p []byte) (int, error) { return f.pr.Read(p) }

func (f *fakeModem) Write(p []byte) (int, error) {
	cmd := strings.TrimSpace(string(p))
	f.mu.Lock()
	f.sent = append(f.sent, cmd)
	f.mu.Unlock()
	if r := f.reply(cmd); r != "" {
		go f.pw.Write([]byte(r))
	}
	return len(p), nil
}

func (f *fakeModem) push(line string) {
	go f.pw.Write([]byte(line + "\r\n"))
}

func (f *fakeModem) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func okModem(cmd string) string { return "+OK\r\n" }

func TestATModemConfigure(t *testing.T) {
	f := newFakeModem(okModem)
	m := newATModem(f)
	if err := m.configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	got := f.commands()
	want := []string{"AT", "AT+BAND=915000000"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("commands = %q, want %q", got, want)
	}
}

func TestATModemConfigureNoAnswer(t *testing.T) {
	f := newFakeModem(func(string) string { return "" })
	m := newATModem(f)
	// Close the line so the command fails fast instead of waiting out its timer.
	f.pw.Close()
	if err := m.configure(); !errors.Is(err, ErrRadioNotFound) {
		t.Fatalf("configure() = %v, want ErrRadioNotFound", err)
	}
}

func TestATModemTx(t *testing.T) {
	f := newFakeModem(func(cmd string) string {
		if strings.HasPrefix(cmd, "AT+SEND=") {
			return "+ERR=5\r\n"
		}
		return "+OK\r\n"
	})
	m := newATModem(f)
	err := m.Tx([]byte("hello"), time.Second)
	if err == nil || !strings.Contains(err.Error(), "+ERR=5") {
		t.Fatalf("Tx() = %v, want +ERR=5", err)
	}
	if got := f.commands(); len(got) != 1 || got[0] != "AT+SEND=0,5,hello" {
		t.Fatalf("commands = %q", got)
	}
	if err := m.Tx(nil, time.Second); err == nil {
		t.Fatal("Tx(empty) = nil, want error")
	}
	if err := m.Tx(bytes.Repeat([]byte{'a'}, rylrMaxPayload+1), time.Second); err == nil {
		t.Fatal("Tx(oversized) = nil, want error")
	}
}

func TestATModemRx(t *testing.T) {
	f := newFakeModem(okModem)
	m := newATModem(f)

	f.push("+RCV=7,5,a,b,c,-40,11")
	got, err := m.Rx(time.Second)
	if err != nil {
		t.Fatalf("Rx: %v", err)
	}
	if string(got) != "a,b,c" {
		t.Fatalf("Rx() = %q, want %q", got, "a,b,c")
	}

	f.push("+RCV=7,9,short,-40,11")
	if _, err := m.Rx(time.Second); !errors.Is(err, ErrBadFrame) {
		t.Fatalf("Rx(bad) = %v, want ErrBadFrame", err)
	}

	if _, err := m.Rx(20 * time.Millisecond); !errors.Is(err, ErrRxTimeout) {
		t.Fatalf("Rx(idle) = %v, want ErrRxTimeout", err)
	}
}

func TestATModemKeepsFramesDuringCommand(t *testing.T) {
	f := newFakeModem(func(cmd string) string {
		return "+RCV=1,2,hi,-30,9\r\n+OK\r\n"
	})
	m := newATModem(f)
	if err := m.Tx([]byte("x"), time.Second); err != nil {
		t.Fatalf("Tx: %v", err)
	}
	got, err := m.Rx(10 * time.Millisecond)
	if err != nil || string(got) != "hi" {
		t.Fatalf("Rx() = (%q, %v), want (hi, nil)", got, err)
	}
}

func TestATModemRxClosedLineIsNotTimeout(t *testing.T) {
	m := newATModem(struct {
		io.Reader
		io.Writer
	}{strings.NewReader(""), io.Discard})

	start := time.Now()
	_, err := m.Rx(2 * time.Second)
	if err == nil || errors.Is(err, ErrRxTimeout) {
		t.Fatalf("Rx() after EOF = %v, want a line error", err)
	}
	if !errors.Is(err, errModemClosed) {
		t.Fatalf("Rx() after EOF = %v, want errModemClosed", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Rx() after EOF took %v", time.Since(start))
	}
}

func TestATModemTxAndRxInFlightTogether(t *testing.T) {
	f := newFakeModem(func(cmd string) string {
		if strings.HasPrefix(cmd, "AT+SEND=") {
			return "+OK\r\n"
		}
		return ""
	})
	m := newATModem(f)

	rx := make(chan error, 1)
	go func() {
		_, err := m.Rx(200 * time.Millisecond)
		rx <- err
	}()
	time.Sleep(10 * time.Millisecond)

	if err := m.Tx([]byte("ping"), time.Second); err != nil {
		t.Fatalf("Tx with Rx pending: %v", err)
	}
	if err := <-rx; !errors.Is(err, ErrRxTimeout) {
		t.Fatalf("Rx() = %v, want ErrRxTimeout", err)
	}
}

func TestParseRCV(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"+RCV=50,5,HELLO,-99,40", "HELLO", true},
		{"+RCV=0,0,,-1,1", "", true},
		{"+RCV=50,5,HELLO", "", false},
		{"+RCV=x,5,HELLO,-99,40", "", false},
		{"+RCV=50,5,HELLOO,-99,40", "", false},
		{"+OK", "", false},
	}
	for _, tt := range tests {
		got, err := parseRCV(tt.line)
		if tt.ok {
			if err != nil || string(got) != tt.want {
				t.Fatalf("parseRCV(%q) = (%q, %v), want %q", tt.line, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrBadFrame) {
			t.Fatalf("parseRCV(%q) err = %v, want ErrBadFrame", tt.line, err)
		}
	}
}
