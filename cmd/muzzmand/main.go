package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muzzman/daemon/internal/backend"
	"github.com/muzzman/daemon/internal/banner"
	"github.com/muzzman/daemon/internal/config"
	"github.com/muzzman/daemon/internal/dispatcher"
	"github.com/muzzman/daemon/internal/logging"
	"github.com/muzzman/daemon/internal/transport"
)

func main() {
	cfg := config.Load()

	logging.Init(os.Stdout)
	logging.SetLevel(cfg.LogLevel)

	sock, err := transport.Listen(cfg.BindAddr)
	if err != nil {
		slog.Error("failed to bind", "addr", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	defer sock.Close()

	bk := backend.NewMemory()
	d := dispatcher.New(sock, bk)
	defer d.Close()

	banner.Print("MuzzMan Daemon", []banner.ConfigLine{
		{Label: "Bind", Value: cfg.BindAddr},
		{Label: "Downloads", Value: cfg.DefaultDownloadPath},
		{Label: "Log level", Value: cfg.LogLevel},
		{Label: "Client TTL", Value: cfg.ClientTTL.String()},
	})

	run(d, sock, cfg)
}

func run(d *dispatcher.Dispatcher, sock *transport.Socket, cfg *config.Config) {
	slog.Info("starting muzzmand", "addr", sock.LocalAddr().String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := d.Serve(ctx); err != nil {
			slog.Error("dispatcher stopped", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("received signal, shutting down", "signal", sig)
	cancel()

	time.Sleep(200 * time.Millisecond)
}
