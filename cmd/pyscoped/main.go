package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wbd2023/pyscope/internal/config"
	"github.com/wbd2023/pyscope/internal/controller"
	"github.com/wbd2023/pyscope/internal/host"
	"github.com/wbd2023/pyscope/internal/logger"
	"github.com/wbd2023/pyscope/internal/notify"
	"github.com/wbd2023/pyscope/internal/reconcile"
	"github.com/wbd2023/pyscope/internal/snapshot"
)

// stdio bridges the editor host's pipe pair into one ReadWriteCloser for the
// JSON-RPC stream.
type stdio struct {
	in  *os.File
	out *os.File
}

func (s *stdio) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s *stdio) Close() error {
	rerr := s.in.Close()
	werr := s.out.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "daemon config file")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to ensure directories: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	log := logger.ForComponent("main")

	store, err := snapshot.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open snapshot store", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := host.NewClient()
	rec := reconcile.New(client, store)
	notifier := notify.New(client)
	ctrl := controller.New(cfg, client, rec, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("signal received, restoring and exiting", "signal", sig.String())
		ctrl.Shutdown(context.Background())
		cancel()
	}()

	log.Info("pyscoped started", "database", cfg.DatabasePath)

	if err := client.Run(ctx, &stdio{in: os.Stdin, out: os.Stdout}, ctrl); err != nil {
		log.Error("host connection failed", "error", err)
		os.Exit(1)
	}
}
