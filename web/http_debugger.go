package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/guslan/chip8"
)

// HttpDebugger streams the machine state to websocket clients
type HttpDebugger struct {
	Cpu *chip8.Cpu

	// SendEvery sends the state every n cycles on top of every frame. 0 disables it.
	SendEvery uint64

	states *hub
}

// NewHttpDebugger creates a new debugger
// This method will pause the cpu and register the hooks
func NewHttpDebugger(cpu *chip8.Cpu) *HttpDebugger {
	deb := &HttpDebugger{
		Cpu:    cpu,
		states: newHub(),
	}

	cpu.AddAfterCycleHook(deb.afterCycle)
	cpu.AddAfterFrameHook(deb.afterFrame)
	cpu.AddErrorHook(deb.afterError)

	cpu.Stop()
	deb.send(cpu)

	return deb
}

// Handler upgrades to a websocket that receives chip8.State frames
func (d *HttpDebugger) Handler() http.Handler {
	return serveStream(d.states, "debugger")
}

// Register adds the state stream to mux at /debugger
func (d *HttpDebugger) Register(mux *http.ServeMux) {
	mux.Handle("/debugger", d.Handler())
}

// Listen serves the state stream and the control endpoints on their own,
// for frontends that are not the web one. It returns when ctx is done.
func (d *HttpDebugger) Listen(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	d.Register(mux)
	registerControls(mux, d.Cpu)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("Debugger listening on port", slog.Int("port", port))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (d *HttpDebugger) afterCycle(cpu *chip8.Cpu) {
	if d.SendEvery > 0 && cpu.Cycles()%d.SendEvery == 0 {
		d.send(cpu)
	}
}

func (d *HttpDebugger) afterFrame(cpu *chip8.Cpu) {
	d.send(cpu)
}

func (d *HttpDebugger) afterError(cpu *chip8.Cpu) {
	slog.Debug("Debugger saw an error", slog.Any("error", cpu.LastError()))
	d.send(cpu)
}

func (d *HttpDebugger) send(cpu *chip8.Cpu) {
	msg, err := cpu.State().MarshalBinary()
	if err != nil {
		slog.Error("Error encoding state", slog.Any("error", err))
		return
	}

	d.states.publish(msg)
}
