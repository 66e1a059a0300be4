package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nstehr/vimy/tactics-core/agent"
	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/config"
	"github.com/nstehr/vimy/tactics-core/diag"
	"github.com/nstehr/vimy/tactics-core/ipc"
	"github.com/nstehr/vimy/tactics-core/store"
)

const banner = `
████████╗ █████╗  ██████╗████████╗██╗ ██████╗███████╗
╚══██╔══╝██╔══██╗██╔════╝╚══██╔══╝██║██╔════╝██╔════╝
   ██║   ███████║██║        ██║   ██║██║     ███████╗
   ██║   ██╔══██║██║        ██║   ██║██║     ╚════██║
   ██║   ██║  ██║╚██████╗   ██║   ██║╚██████╗███████║
   ╚═╝   ╚═╝  ╚═╝ ╚═════╝   ╚═╝   ╚═╝ ╚═════╝╚══════╝

Turn-Activation Intelligence`

func main() {
	configDir := flag.String("config", ".", "directory containing tactics.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting tactics", "socket", cfg.SocketPath, "seed", cfg.Seed, "doctrine", cfg.Doctrine.Name)

	// Fail fast on a bad behaviour file; sessions reload it for a fresh scope.
	vars := func() (*behavior.Store, error) {
		if cfg.BehaviorFile == "" {
			return behavior.NewStore(), nil
		}
		return behavior.Load(cfg.BehaviorFile)
	}
	if _, err := vars(); err != nil {
		slog.Error("failed to load behavior file", "path", cfg.BehaviorFile, "error", err)
		os.Exit(1)
	}

	var trace diag.Sink = diag.Nop{}
	if cfg.Diagnostics.Enabled {
		sink, err := diag.NewFileSink(cfg.Diagnostics.Dir)
		if err != nil {
			slog.Error("failed to open trace dir", "dir", cfg.Diagnostics.Dir, "error", err)
			os.Exit(1)
		}
		trace = sink
	}

	var sides agent.SideStore
	if cfg.Store.Enabled {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			slog.Error("failed to open side store", "path", cfg.Store.Path, "error", err)
			os.Exit(1)
		}
		defer st.Close()
		sides = st
	}

	wiring := agent.Wiring{
		Vars:          vars,
		Reference:     cfg.ReferenceWeapon,
		Inspiration:   cfg.Inspiration,
		Doctrine:      cfg.Doctrine,
		NotifyTimeout: cfg.NotifyTimeout,
		ThinkBudget:   cfg.ThinkBudget,
		Seed:          cfg.Seed,
		Trace:         trace,
		Log:           logger,
	}

	socketPath := cfg.SocketPath

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(ctx, conn, wiring, sides, logger)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

// handleConn runs one engine session. Sessions share the side store, which
// serialises access through its single connection.
func handleConn(ctx context.Context, conn net.Conn, wiring agent.Wiring, sides agent.SideStore, logger *slog.Logger) {
	c := ipc.NewConnection(conn, nil, logger)
	a := agent.New(ctx, c, wiring.Build, sides, logger)
	a.Register()
	c.ReadLoop()
}
