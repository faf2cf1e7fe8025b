package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"codeberg.org/voss/hydractl/internal/config"
	"codeberg.org/voss/hydractl/internal/cpufreq"
	"codeberg.org/voss/hydractl/internal/gpu"
	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/node"
	"codeberg.org/voss/hydractl/internal/pid"
	"codeberg.org/voss/hydractl/internal/statecell"
	"codeberg.org/voss/hydractl/internal/wire"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write("hydractl-root"); err != nil {
		logger.Fatal().Err(err).Msg("failed to write pidfile")
	}
	defer pid.Remove("hydractl-root")

	monitor, err := gpu.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize GPU monitor")
	}
	defer monitor.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	interval := time.Duration(cfg.Interval) * time.Second
	cell := statecell.New()

	loop := node.NewRoot(node.RootConfig{
		Interval: interval,
		Governor: cfg.Governor,
		Monitor:  cfg.Monitor,
	}, monitor, cpufreq.New(), cell)

	addr := net.JoinHostPort(cfg.ListenAddr, strconv.Itoa(cfg.RootPort))
	server := wire.NewServer("root", addr, interval, interval, cell.Read)

	if cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Logging GPU status...")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		server.Run(ctx)
	}()

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	cancel()
	wg.Wait()
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
