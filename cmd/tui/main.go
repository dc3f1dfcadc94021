package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/tui"
)

func main() {
	autostart := flag.Bool("start", false, "Starts the console automatically (defaults = false).")
	debug := flag.Bool("debug", false, "Log every instruction (defaults = false).")
	speed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("The starting speed of the CPU in Hz. It has to be in the range [%d, %d] (defaults = %d).", chip8.MinSpeed, chip8.MaxSpeed, chip8.DefaultSpeed))
	seed := flag.Uint64("seed", 0, "Seed for the random number generator, 0 draws from the OS (defaults = 0).")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <rom>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}

	deb := tui.NewDebugger(func(config *tui.DebuggerConfig) {
		config.Speed = *speed
		config.Autostart = *autostart
		config.LogLevel = level
		if *seed != 0 {
			config.CpuConfigs = append(config.CpuConfigs, chip8.WithSeed(*seed))
		}
	})
	// the terminal belongs to the debugger, so the logs go to its pane
	slog.SetDefault(deb.Logger())

	if err := deb.Load(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := deb.Run(ctx)
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, chip8.ErrHalted) {
		fmt.Fprint(os.Stderr, deb.Cpu.State())
	}
	stop()
	os.Exit(1)
}
