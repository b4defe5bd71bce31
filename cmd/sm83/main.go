package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	"github.com/valerio/go-sm83/sm83"
	"github.com/valerio/go-sm83/sm83/monitor"
	"github.com/valerio/go-sm83/sm83/serial"
)

func main() {
	app := cli.NewApp()
	app.Name = "sm83"
	app.Description = "A cycle-counting Sharp SM83 (LR35902) CPU core"
	app.Usage = "sm83 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file (.gb, .gbc, .bin, optionally .gz/.bz2/.xz/.zst/.zip/.7z)",
		},
		cli.IntFlag{
			Name:  "steps",
			Usage: "Number of instructions to execute",
		},
		cli.IntFlag{
			Name:  "cycles",
			Usage: "Number of clock ticks to execute (4 ticks per machine cycle)",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction (needs --log-level debug)",
		},
		cli.BoolFlag{
			Name:  "monitor",
			Usage: "Open the terminal step debugger",
		},
		cli.BoolFlag{
			Name:  "serial-timing",
			Usage: "Complete serial transfers after 4096 ticks instead of immediately",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Minimum log level: debug, info, warn, error",
			Value: "info",
		},
	}
	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	if c.Bool("monitor") {
		return runMonitor(c, romPath, level)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	machine, err := sm83.NewWithFile(romPath, machineOptions(c, logger)...)
	if err != nil {
		return err
	}

	steps, cycles := c.Int("steps"), c.Int("cycles")
	if steps <= 0 && cycles <= 0 {
		return errors.New("either --steps or --cycles must be a positive value, or use --monitor")
	}

	var ticks int
	if steps > 0 {
		ticks = machine.RunSteps(steps)
	} else {
		ticks = machine.RunCycles(cycles)
	}

	regs := machine.CPU().Registers()
	slog.Info("Execution completed",
		"ticks", ticks,
		"pc", fmt.Sprintf("0x%04X", regs.PC),
		"af", fmt.Sprintf("0x%04X", regs.AF()),
		"bc", fmt.Sprintf("0x%04X", regs.BC()),
		"de", fmt.Sprintf("0x%04X", regs.DE()),
		"hl", fmt.Sprintf("0x%04X", regs.HL()),
		"sp", fmt.Sprintf("0x%04X", regs.SP),
		"flags", regs.F.String(),
		"halted", machine.CPU().Halted(),
		"locked", machine.CPU().Locked())
	if out := machine.SerialOutput(); out != "" {
		slog.Info("Serial output", "text", out)
	}
	return nil
}

func runMonitor(c *cli.Context, romPath string, level slog.Level) error {
	logs := monitor.NewLogBuffer(200)
	logger := slog.New(monitor.NewLogHandler(logs, level))
	slog.SetDefault(logger)

	machine, err := sm83.NewWithFile(romPath, machineOptions(c, logger)...)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	title := fmt.Sprintf("sm83 monitor | %s | %016x", machine.Cartridge().Title(), machine.Cartridge().Fingerprint())
	mon, err := monitor.New(screen, machine,
		monitor.WithLogBuffer(logs),
		monitor.WithTitle(title),
		monitor.WithLogLevel(level))
	if err != nil {
		return err
	}
	return mon.Run()
}

func machineOptions(c *cli.Context, logger *slog.Logger) []sm83.Option {
	opts := []sm83.Option{
		sm83.WithLogger(logger),
		sm83.WithTrace(c.Bool("trace")),
	}
	if c.Bool("serial-timing") {
		opts = append(opts, sm83.WithSerialOptions(serial.WithFixedTiming()))
	}
	return opts
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
