// Package serial implements the SB/SC link-cable port. No physical link
// partner exists in this core, so the only concrete implementation is a
// sink that logs outgoing bytes and completes transfers on its own,
// raising the serial interrupt the same way a real link partner's ACK
// would.
package serial

import (
	"log/slog"

	"github.com/shonumi/gbe-plus-sub002/internal/bit"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/addr"
)

// Port is the minimal interface the bus needs from a serial device.
// Implementations must only accept addresses addr.SB and addr.SC.
type Port interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// LogSink logs outgoing bytes as text and self-completes transfers,
// raising the serial interrupt the same way a connected device's ACK
// would on real hardware.
type LogSink struct {
	irqHandler     func()
	sb, sc         byte
	transferActive bool
	countdown      int
	logger         *slog.Logger

	immediate bool
	defaultRX byte

	line []byte
}

// Option configures a LogSink.
type Option func(*LogSink)

// WithFixedTiming makes transfers complete after the documented ~4096
// CPU-cycle-per-byte DMG shift-clock delay instead of immediately.
func WithFixedTiming() Option { return func(s *LogSink) { s.immediate = false } }

// NewLogSink creates a logging serial device. irq is called whenever a
// transfer completes; callers wire it to request addr.SerialInterrupt.
func NewLogSink(irq func(), opts ...Option) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		defaultRX:  0xFF,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		return 0xFF
	}
}

func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
		s.countdown = 0
	}
}

func (s *LogSink) Reset() {
	s.sb = 0x00
	s.sc = 0x00
	s.transferActive = false
	s.countdown = 0
	s.line = s.line[:0]
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.completeTransfer()
		return
	}

	s.transferActive = true
	s.countdown = 4096
}

func (s *LogSink) completeTransfer() {
	s.sb = s.defaultRX
	s.sc = bit.Reset(7, s.sc)
	s.transferActive = false
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
