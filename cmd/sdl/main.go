package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/rom"
	"github.com/guslan/chip8/sdl"
)

func init() {
	// SDL wants its window and events on the main thread
	runtime.LockOSThread()
}

func main() {
	speed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("The speed of the CPU in Hz. It has to be in the range [%d, %d] (defaults = %d).", chip8.MinSpeed, chip8.MaxSpeed, chip8.DefaultSpeed))
	seed := flag.Uint64("seed", 0, "Seed for the random number generator, 0 draws from the OS (defaults = 0).")
	scale := flag.Int("scale", sdl.DefaultPixelSize, fmt.Sprintf("Size in pixels of a screen dot (defaults = %d).", sdl.DefaultPixelSize))
	debug := flag.Bool("debug", false, "Log every instruction (defaults = false).")

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

	io := sdl.NewIO(func(config *sdl.IOConfig) {
		config.Title = "chip8 - " + flag.Arg(0)
		config.PixelSize = int32(*scale)
	})

	configs := []chip8.CpuConfigCb{chip8.WithSpeed(*speed)}
	if *seed != 0 {
		configs = append(configs, chip8.WithSeed(*seed))
	}
	cpu := chip8.NewCpu(chip8.NewMemory(), io, io, configs...)

	if err := rom.LoadInto(cpu, flag.Arg(0)); err != nil {
		slog.Error("Cannot load the program", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := io.Run(ctx, cpu)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	slog.Error("Console failed", slog.Any("error", err))
	if cpu.Halted() {
		fmt.Fprint(os.Stderr, cpu.State())
	}
	stop()
	os.Exit(1)
}
