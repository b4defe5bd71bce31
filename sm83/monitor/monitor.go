// Package monitor is a terminal step debugger: it shows the register file,
// the interrupt latches, the code around PC and the most recent log lines,
// and steps or runs the machine on key presses.
package monitor

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-sm83/sm83/cpu"
	"github.com/valerio/go-sm83/sm83/disasm"
	"github.com/valerio/go-sm83/sm83/interrupt"
)

const (
	// TicksPerFrame is how many clock ticks a DMG frame lasts; it is also the
	// amount a running monitor advances between redraws.
	TicksPerFrame = 70224
	// burstSteps is the number of instructions run by the burst key.
	burstSteps = 100

	registerHeight = 9
	disasmHeight   = 10
)

// Machine is what the monitor inspects and drives. Read must have no side
// effects.
type Machine interface {
	Step() int
	CPU() *cpu.CPU
	Interrupts() *interrupt.Controller
	Read(address uint16) byte
}

// Monitor owns a tcell screen for as long as Run is executing.
type Monitor struct {
	screen  tcell.Screen
	machine Machine
	logs    *LogBuffer
	limiter Limiter
	title   string

	logLevel slog.Level
	running  bool
	quit     bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogBuffer shows the entries of buffer in the log panel. The caller is
// expected to route slog through a LogHandler writing to it.
func WithLogBuffer(buffer *LogBuffer) Option {
	return func(m *Monitor) { m.logs = buffer }
}

// WithLimiter replaces the frame pacing used while running.
func WithLimiter(limiter Limiter) Option {
	return func(m *Monitor) { m.limiter = limiter }
}

// WithTitle sets the text shown in the title bar.
func WithTitle(title string) Option {
	return func(m *Monitor) { m.title = title }
}

// WithLogLevel sets the minimum level shown in the log panel. The +/- keys
// still change it at run time.
func WithLogLevel(level slog.Level) Option {
	return func(m *Monitor) { m.logLevel = level }
}

// New initializes screen and returns a paused monitor for machine.
func New(screen tcell.Screen, machine Machine, opts ...Option) (*Monitor, error) {
	m := &Monitor{
		screen:   screen,
		machine:  machine,
		logs:     NewLogBuffer(100),
		title:    "sm83 monitor",
		logLevel: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.limiter == nil {
		m.limiter = NewTickerLimiter()
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	return m, nil
}

// Run processes input and redraws until the quit key is pressed. While
// paused it blocks on input; while running it advances one frame worth of
// ticks per redraw, paced by the limiter.
func (m *Monitor) Run() error {
	defer m.screen.Fini()
	if t, ok := m.limiter.(*TickerLimiter); ok {
		defer t.Stop()
	}

	m.Draw()
	for !m.quit {
		if !m.running {
			ev := m.screen.PollEvent()
			if ev == nil {
				return nil
			}
			m.HandleEvent(ev)
		}
		for !m.quit && m.screen.HasPendingEvent() {
			m.HandleEvent(m.screen.PollEvent())
		}

		if m.running {
			m.RunFrame()
			m.limiter.WaitForNextFrame()
		}
		m.Draw()
	}
	return nil
}

// HandleEvent applies a single input or resize event.
func (m *Monitor) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		m.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			m.quit = true
		case tcell.KeyEnter:
			m.StepInstruction()
		case tcell.KeyRune:
			m.handleRune(ev.Rune())
		}
	}
}

func (m *Monitor) handleRune(r rune) {
	switch r {
	case 'q':
		m.quit = true
	case 's', ' ':
		m.StepInstruction()
	case 'n':
		for i := 0; i < burstSteps; i++ {
			if !m.StepInstruction() {
				break
			}
		}
	case 'f':
		m.RunFrame()
	case 'r':
		m.running = !m.running
		if m.running {
			m.limiter.Reset()
			slog.Info("Running")
		} else {
			slog.Info("Paused")
		}
	case '+', '=':
		m.changeLogLevel(-4)
	case '-', '_':
		m.changeLogLevel(4)
	}
}

// StepInstruction executes one step. It reports false, and pauses, once the
// core has locked up.
func (m *Monitor) StepInstruction() bool {
	if m.machine.CPU().Locked() {
		m.running = false
		return false
	}
	m.machine.Step()
	return true
}

// RunFrame steps until a frame worth of ticks has elapsed.
func (m *Monitor) RunFrame() {
	for elapsed := 0; elapsed < TicksPerFrame; {
		if m.machine.CPU().Locked() {
			m.running = false
			slog.Warn("Stopped: CPU locked up", "pc", fmt.Sprintf("0x%04X", m.machine.CPU().Registers().PC))
			return
		}
		elapsed += m.machine.Step()
	}
}

// changeLogLevel moves the display threshold; negative deltas show more.
func (m *Monitor) changeLogLevel(delta slog.Level) {
	level := m.logLevel + delta
	if level < slog.LevelDebug || level > slog.LevelError {
		return
	}
	m.logLevel = level
	slog.Info("Log level changed", "level", level)
}

// Running reports whether the monitor is free-running.
func (m *Monitor) Running() bool { return m.running }

// Quit reports whether the quit key has been pressed.
func (m *Monitor) Quit() bool { return m.quit }

// Draw renders every panel and shows the result.
func (m *Monitor) Draw() {
	m.screen.Clear()
	width, height := m.screen.Size()

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	m.drawLine(0, 0, width, m.title, titleStyle)

	y := 1
	m.drawRegisters(y, width)
	y += registerHeight
	m.drawLine(0, y, width, "Disassembly", titleStyle)
	m.drawDisassembly(y+1, width)
	y += disasmHeight + 1
	m.drawLine(0, y, width, "Logs", titleStyle)
	m.drawLogs(y+1, width, height-y-2)

	help := "s/Enter: step  n: step x100  f: frame  r: run/pause  +/-: log level  q: quit"
	m.drawLine(0, height-1, width, help, tcell.StyleDefault.Foreground(tcell.ColorWhite))

	m.screen.Show()
}

func (m *Monitor) drawRegisters(startY, width int) {
	c := m.machine.CPU()
	regs := c.Registers()
	irq := m.machine.Interrupts()

	status := "PAUSED"
	switch {
	case c.Locked():
		status = "LOCKED"
	case m.running:
		status = "RUNNING"
	case c.Halted():
		status = "HALTED"
	}

	lines := []string{
		fmt.Sprintf("Status: %s", status),
		fmt.Sprintf("A: 0x%02X  F: 0x%02X  [%s]", regs.A, regs.F.Byte(), regs.F),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", regs.B, regs.C),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", regs.D, regs.E),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", regs.H, regs.L),
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", regs.SP, regs.PC),
		fmt.Sprintf("IME: %s  IE: 0x%02X  IF: 0x%02X", c.IME(), irq.IE(), irq.IF()),
		fmt.Sprintf("Pending: %s", pendingNames(irq.Pending())),
		fmt.Sprintf("Cycles: %d", c.Cycles()),
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		m.drawLine(0, startY+i, width, line, style)
	}
}

func pendingNames(pending uint8) string {
	if pending == 0 {
		return "none"
	}
	names := ""
	for _, source := range interrupt.Sources {
		if pending&uint8(source) == 0 {
			continue
		}
		if names != "" {
			names += " "
		}
		names += source.String()
	}
	return names
}

func (m *Monitor) drawDisassembly(startY, width int) {
	pc := m.machine.CPU().Registers().PC

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	for i, line := range disasm.Range(pc, disasmHeight, m.machine) {
		useStyle := style
		if line.Address == pc {
			useStyle = currentStyle
		}
		m.drawLine(0, startY+i, width, disasm.Format(line, line.Address == pc), useStyle)
	}
}

func (m *Monitor) drawLogs(startY, width, rows int) {
	if rows <= 0 || m.logs == nil {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	i := 0
	for _, entry := range m.logs.Recent(0) {
		if i >= rows {
			break
		}
		if entry.Level < m.logLevel {
			continue
		}

		style := infoStyle
		switch {
		case entry.Level >= slog.LevelError:
			style = errStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		}

		m.drawLine(0, startY+i, width, FormatLogEntry(entry), style)
		i++
	}
}

// drawLine writes text at (x, y), truncating it with "..." past width.
func (m *Monitor) drawLine(x, y, width int, text string, style tcell.Style) {
	runes := []rune(text)
	if len(runes) > width-x {
		if width-x > 3 {
			runes = append(runes[:width-x-3], '.', '.', '.')
		} else if width-x > 0 {
			runes = runes[:width-x]
		} else {
			return
		}
	}
	for i, r := range runes {
		m.screen.SetContent(x+i, y, r, nil, style)
	}
}
