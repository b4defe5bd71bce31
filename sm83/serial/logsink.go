// Package serial provides the device connected to the SB/SC link port.
package serial

import (
	"log/slog"
	"strings"

	"github.com/valerio/go-sm83/sm83/addr"
	"github.com/valerio/go-sm83/sm83/bit"
)

// TicksPerByte is how long a byte takes to shift out on the internal clock.
const TicksPerByte = 4096

// LogSink is a link partner that never answers: every byte shifted out is
// collected as text and logged a line at a time. Test programs print their
// results this way.
type LogSink struct {
	request func()
	logger  *slog.Logger

	sb, sc    byte
	active    bool
	countdown int

	immediate bool
	// read back in SB once a transfer completes, no partner is driving the line
	idle byte

	line   []byte
	output strings.Builder
}

// LogSinkOption configures a LogSink.
type LogSinkOption func(*LogSink)

// WithFixedTiming completes transfers after TicksPerByte ticks instead of
// as soon as they start.
func WithFixedTiming() LogSinkOption { return func(s *LogSink) { s.immediate = false } }

// WithLogger sets the logger completed lines are written to.
func WithLogger(logger *slog.Logger) LogSinkOption {
	return func(s *LogSink) { s.logger = logger }
}

// NewLogSink creates a new logging serial device. request is called whenever
// a transfer completes and should raise the Serial interrupt.
func NewLogSink(request func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		request:   request,
		logger:    slog.Default(),
		immediate: true,
		idle:      0xFF,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Write accepts SB and SC only, anything else is dropped.
func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.start()
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		// unused bits read as 1
		return s.sc | 0x7E
	}
	return 0xFF
}

// Tick advances a pending transfer when running with fixed timing.
func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.active {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.countdown = 0
		s.complete()
	}
}

func (s *LogSink) Reset() {
	s.sb = 0
	s.sc = 0
	s.active = false
	s.countdown = 0
	s.line = s.line[:0]
	s.output.Reset()
}

// Output returns every byte shifted out so far.
func (s *LogSink) Output() string {
	return s.output.String()
}

// start begins a transfer when SC has both the start bit (7) and the
// internal clock bit (0) set.
func (s *LogSink) start() {
	if s.active || !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if b != 0 {
		s.output.WriteByte(b)
	}
	if b == 0 || b == '\n' || b == '\r' {
		s.flush()
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.complete()
		return
	}
	s.active = true
	s.countdown = TicksPerByte
}

func (s *LogSink) flush() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("serial", "line", string(s.line))
	s.line = s.line[:0]
}

func (s *LogSink) complete() {
	s.sb = s.idle
	s.sc = bit.Clear(7, s.sc)
	s.active = false
	if s.request != nil {
		s.request()
	}
}
