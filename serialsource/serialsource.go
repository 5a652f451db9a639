// Package serialsource reads AIVDM/AIVDO sentences line by line from a live
// serial AIS receiver.
package serialsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// maxLineLength bounds a single sentence so a receiver stuck sending noise
// without a newline can't grow the buffer without limit.
const maxLineLength = 1024

// Config controls how a Source talks to the underlying serial port.
type Config struct {
	// BaudRate is the serial line speed. Most AIS receivers speak NMEA0183
	// at 38400 baud.
	BaudRate int
	// ReadTimeout bounds how long a single Read on the port may block. The
	// port reports os.ErrDeadlineExceeded/io.EOF once it elapses, which
	// ReadLine treats as "no data yet" rather than a fatal error.
	ReadTimeout time.Duration
	// ReceiveDataTimeout is how long ReadLine may go without receiving any
	// bytes before it gives up and returns an error. Zero disables the
	// check.
	ReceiveDataTimeout time.Duration
}

// DefaultConfig returns the settings used by most USB/serial AIS receivers.
func DefaultConfig() Config {
	return Config{
		BaudRate:           38400,
		ReadTimeout:        100 * time.Millisecond,
		ReceiveDataTimeout: 5 * time.Second,
	}
}

// Source is a line-oriented reader over a serial AIS receiver.
type Source struct {
	device io.ReadWriteCloser
	config Config

	timeNow func() time.Time
}

// Open opens the named serial port (e.g. "/dev/ttyUSB0") and returns a
// Source ready to read sentences from it.
func Open(portName string, config Config) (*Source, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        portName,
		Baud:        config.BaudRate,
		ReadTimeout: config.ReadTimeout,
		Size:        8,
	})
	if err != nil {
		return nil, fmt.Errorf("serialsource: opening %s: %w", portName, err)
	}
	return NewSource(port, config), nil
}

// NewSource wraps an already-open device, e.g. a plain file or a fake used
// in tests, in a Source.
func NewSource(device io.ReadWriteCloser, config Config) *Source {
	return &Source{
		device:  device,
		config:  config,
		timeNow: time.Now,
	}
}

// Initialize prepares the device for reading. Unlike Actisense's NGT-1,
// which needs a proprietary "receive all PGNs" handshake before it emits
// anything, commodity AIS receivers start streaming AIVDM sentences as soon
// as they're powered, so there is nothing to send here. Kept so Source
// satisfies the same Initialize/Close shape as the NGT-1 reader.
func (s *Source) Initialize() error {
	return nil
}

// Close closes the underlying device.
func (s *Source) Close() error {
	return s.device.Close()
}

// ReadLine blocks until a full newline-terminated sentence has been read,
// ctx is cancelled, or no bytes arrive for longer than config.ReceiveDataTimeout.
// Empty lines (bare "\n" or "\r\n") are skipped rather than returned.
func (s *Source) ReadLine(ctx context.Context) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	lastReadWithDataTime := s.timeNow()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := s.device.Read(buf)
		// ReadTimeout expiring with no data is not fatal: the caller just
		// hasn't sent anything yet. We only bail out once ReceiveDataTimeout
		// has elapsed with no bytes at all.
		if err != nil && !(errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.EOF)) {
			return "", err
		}

		now := s.timeNow()
		if n == 0 {
			if s.config.ReceiveDataTimeout > 0 && now.Sub(lastReadWithDataTime) > s.config.ReceiveDataTimeout {
				if err == nil {
					err = fmt.Errorf("serialsource: no data received for over %s", s.config.ReceiveDataTimeout)
				}
				return "", err
			}
			continue
		}
		lastReadWithDataTime = now

		b := buf[0]
		if b == '\n' {
			trimmed := strings.TrimRight(string(line), "\r")
			if trimmed == "" {
				line = line[:0]
				continue
			}
			return trimmed, nil
		}
		line = append(line, b)
		if len(line) > maxLineLength {
			return "", fmt.Errorf("serialsource: sentence exceeded %d bytes without a newline", maxLineLength)
		}
	}
}

// Scan reads sentences until ctx is cancelled or a read error persists,
// invoking onLine for each one. It tolerates transient read errors the way
// the Actisense reader's main loop does, giving up only after
// maxConsecutiveErrors in a row.
func (s *Source) Scan(ctx context.Context, onLine func(line string)) error {
	const maxConsecutiveErrors = 20
	consecutiveErrors := 0
	for {
		line, err := s.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err != nil {
			consecutiveErrors++
			if consecutiveErrors > maxConsecutiveErrors {
				return fmt.Errorf("serialsource: giving up after %d consecutive read errors: %w", consecutiveErrors, err)
			}
			continue
		}
		consecutiveErrors = 0
		onLine(line)
	}
}
