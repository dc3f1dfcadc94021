/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
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
	"github.com/guslan/chip8/rom"
	"github.com/guslan/chip8/web"
)

func main() {
	port := flag.Int("port", 9999, "The port of the server (default = 9999)")
	speed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("Speed in cycles per second (default = %d)", chip8.DefaultSpeed))
	seed := flag.Uint64("seed", 0, "Seed for the random number generator, 0 draws from the OS (default = 0)")
	debug := flag.Bool("debug", false, "Stream the CPU state to /debugger and start paused (default = false)")
	watch := flag.Bool("watch", false, "Reload the ROM when the file changes (default = false)")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() != 1 {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <rom>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	program, err := rom.Load(path)
	if err != nil {
		slog.Error("Cannot load the program", slog.Any("error", err))
		os.Exit(1)
	}

	server := web.NewServer(chip8.NewMemory(), func(config *web.ServerConfig) {
		config.Speed = *speed
		config.UseDebugger = *debug
		if *seed != 0 {
			config.CpuConfigs = append(config.CpuConfigs, chip8.WithSeed(*seed))
		}
	})

	if err := server.LoadProgram(program); err != nil {
		slog.Error("Cannot load the program", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *watch {
		go func() {
			err := rom.Watch(ctx, path, func(program []byte) {
				if err := server.LoadProgram(program); err != nil {
					slog.Warn("Cannot reload the program", slog.Any("error", err))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("Stopped watching the ROM", slog.Any("error", err))
			}
		}()
	}

	err = server.Listen(ctx, *port)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case server.Cpu.Halted():
		slog.Error("CPU halted", slog.Any("error", err))
		fmt.Fprint(os.Stderr, server.Cpu.State())
		os.Exit(1)
	default:
		slog.Error("Server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
