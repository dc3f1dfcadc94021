package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/gui"
)

func main() {
	autostart := flag.Bool("start", false, "Starts the console automatically (defaults = false).")
	debug := flag.Bool("debug", false, "Show debug information for the console (defaults = false).")
	initialSpeed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("The starting speed of the CPU in Hz. It has to be in the range [%d, %d] (defaults = %d).", chip8.MinSpeed, chip8.MaxSpeed, chip8.DefaultSpeed))
	seed := flag.Uint64("seed", 0, "Seed for the random number generator, 0 draws from the OS (defaults = 0).")
	scale := flag.Int("scale", gui.DefaultPixelSize, fmt.Sprintf("Size in pixels of a screen dot (defaults = %d).", gui.DefaultPixelSize))

	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if flag.NArg() != 1 {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <rom>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	app := gui.NewConsoleApp(func(config *gui.AppConfig) {
		config.Speed = *initialSpeed
		config.PixelSize = int32(*scale)
		config.Autostart = *autostart
		config.UseDebugger = *debug
		if *seed != 0 {
			config.CpuConfigs = append(config.CpuConfigs, chip8.WithSeed(*seed))
		}
	})

	if err := app.Load(flag.Arg(0)); err != nil {
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		slog.Error("Console failed", slog.Any("error", err))
		if app.Cpu.Halted() {
			fmt.Fprint(os.Stderr, app.Cpu.State())
		}
		os.Exit(1)
	}
}
