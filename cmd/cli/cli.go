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
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/rom"
	"github.com/guslan/chip8/term"
	"github.com/guslan/chip8/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	portPtr := flag.Int("port", 0, "serve the debugger on this port, the CPU starts paused (0 = off)")
	speedPtr := flag.Uint("speed", chip8.DefaultSpeed, "speed in instructions per second")
	seedPtr := flag.Uint64("seed", 0, "seed for the random number generator, 0 draws from the OS")
	debugPtr := flag.Bool("debug", false, "log every instruction")
	logPtr := flag.String("log", "", "write the logs to this file instead of stderr")
	watchPtr := flag.Bool("watch", false, "reload the ROM when the file changes")
	waitPtr := flag.Bool("wait", false, "wait for a keypad key before running")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <rom>\n", os.Args[0])
		flag.PrintDefaults()
		return 2
	}
	path := flag.Arg(0)

	var logOut io.Writer = os.Stderr
	if *logPtr != "" {
		f, err := os.OpenFile(*logPtr, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	level := slog.LevelWarn
	if *debugPtr {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))

	program, err := rom.Load(path)
	if err != nil {
		slog.Error("Cannot load the program", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	configs := []chip8.CpuConfigCb{chip8.WithSpeed(*speedPtr)}
	if *seedPtr != 0 {
		configs = append(configs, chip8.WithSeed(*seedPtr))
	}

	kb := term.NewKeyboard()
	cpu := chip8.NewCpu(chip8.NewMemory(), chip8.NewTerminalDisplay(), kb, configs...)
	if err := cpu.LoadProgram(program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *portPtr > 0 {
		deb := web.NewHttpDebugger(cpu)
		go func() {
			if err := deb.Listen(ctx, *portPtr); err != nil {
				slog.Error("Debugger failed", slog.Any("error", err))
			}
		}()
	}

	if err := cpu.Boot(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer kb.Close()

	if *waitPtr {
		fmt.Print("press a key to start\r\n")
		if _, err := chip8.WaitForKey(ctx, kb, 10*time.Millisecond); err != nil {
			return 0
		}
	}

	if *watchPtr {
		go func() {
			err := rom.Watch(ctx, path, func(program []byte) {
				if err := cpu.LoadProgram(program); err != nil {
					slog.Warn("Cannot reload the program", slog.Any("error", err))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("Stopped watching the ROM", slog.Any("error", err))
			}
		}()
	}

	err = cpu.Loop(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case cpu.Halted():
		kb.Close()
		slog.Error("CPU halted", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "%v\r\n%s", err, cpu.State())
		return 1
	default:
		kb.Close()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}
