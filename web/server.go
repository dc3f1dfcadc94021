package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

//go:embed static
var static embed.FS

var upgrader = websocket.Upgrader{} // use default options

type Server struct {
	*chip8.InMemoryKeyboard

	Cpu      *chip8.Cpu
	debugger *HttpDebugger

	display *hub
	mux     *http.ServeMux
}

type ServerConfig struct {
	Speed       uint
	UseDebugger bool
	CpuConfigs  []chip8.CpuConfigCb
}
type ServerConfigCb func(config *ServerConfig)

func NewServer(mem *chip8.Memory, configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		Speed:       chip8.DefaultSpeed,
		UseDebugger: false,
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		InMemoryKeyboard: chip8.NewInMemoryKeyboard(),

		Cpu:      nil,
		debugger: nil,

		display: newHub(),
		mux:     http.NewServeMux(),
	}

	cpuConfigs := append([]chip8.CpuConfigCb{chip8.WithSpeed(config.Speed)}, config.CpuConfigs...)
	s.Cpu = chip8.NewCpu(mem, s, s, cpuConfigs...)
	if config.UseDebugger {
		s.debugger = NewHttpDebugger(s.Cpu)
	}

	s.routes()

	return s
}

func (server *Server) routes() {
	root, _ := fs.Sub(static, "static")
	server.mux.Handle("/", http.FileServer(http.FS(root)))

	registerControls(server.mux, server.Cpu)

	server.mux.Handle("/display", serveStream(server.display, "display"))
	server.mux.HandleFunc("/keypad", server.serveKeypad)
	if server.debugger != nil {
		server.debugger.Register(server.mux)
	}
}

// registerControls adds the endpoints that drive the CPU
func registerControls(mux *http.ServeMux, cpu *chip8.Cpu) {
	mux.HandleFunc("/start", control("Starting", cpu.Start))
	mux.HandleFunc("/stop", control("Stopping", cpu.Stop))
	mux.HandleFunc("/reset", control("Stopping and resetting", func() {
		cpu.Stop()
		cpu.Reset()
	}))
	mux.HandleFunc("/step", func(w http.ResponseWriter, r *http.Request) {
		noCache(w)

		slog.Info("Single cycle")
		if err := cpu.Step(); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
		}
	})
}

func control(msg string, action func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noCache(w)

		slog.Info(msg)
		action()
	}
}

func noCache(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

	w.Header().Set("Cache-Control", "no-cache")
}

// Handler serves the page, the control endpoints and the websockets
func (server *Server) Handler() http.Handler {
	return server.mux
}

func (server *Server) Speed(s uint) {
	server.Cpu.SetSpeedInHz(s)
}

// Listen boots the CPU, runs its loop and serves HTTP until ctx is done or the program halts.
func (server *Server) Listen(ctx context.Context, port int) error {
	if err := server.Cpu.Boot(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.mux,
	}

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- server.Cpu.Loop(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Listening on port", slog.Int("port", port))
		serveErr <- httpServer.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
		cancel()
		<-loopErr
	case err = <-loopErr:
	case <-ctx.Done():
		err = <-loopErr
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Warn("Error shutting down", slog.Any("error", shutdownErr))
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (server *Server) LoadProgram(program []byte) error {
	return server.Cpu.LoadProgram(program)
}
