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
	"codeberg.org/voss/hydractl/internal/cooler"
	"codeberg.org/voss/hydractl/internal/hostsensor"
	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/node"
	"codeberg.org/voss/hydractl/internal/pid"
	"codeberg.org/voss/hydractl/internal/retry"
	"codeberg.org/voss/hydractl/internal/statecell"
	"codeberg.org/voss/hydractl/internal/status"
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
	if err := pid.Write("hydractl-user"); err != nil {
		logger.Fatal().Err(err).Msg("failed to write pidfile")
	}
	defer pid.Remove("hydractl-user")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	interval := time.Duration(cfg.Interval) * time.Second
	cell := statecell.New()

	loop := node.NewUser(node.UserConfig{
		Interval:   interval,
		RetryDelay: interval,
		DegreeMin:  cfg.DegreeMin,
		DegreeMax:  cfg.DegreeMax,
		HueFix:     cfg.HueFix,
		Monitor:    cfg.Monitor,
	}, cooler.NewLiquidctl(), hostsensor.New(cfg.SensorChip, cfg.SensorLabels), cell)

	addr := net.JoinHostPort(cfg.ListenAddr, strconv.Itoa(cfg.UserPort))
	server := wire.NewServer("user", addr, interval, interval, cell.Read)

	if cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Logging cooler status...")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		server.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		consumeBridge(ctx, interval)
	}()

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	cancel()
	wg.Wait()
}

// consumeBridge follows the privileged node's snapshot so the unprivileged
// side can report GPU state and the active governor in its own log.
func consumeBridge(ctx context.Context, interval time.Duration) {
	addr := net.JoinHostPort(cfg.ListenAddr, strconv.Itoa(cfg.BridgePort))

	client := wire.NewClient("bridge", addr, interval, func(snap status.Snapshot) {
		logger.Debug().
			Interface(status.FieldGovernor, snap[status.FieldGovernor]).
			Interface(status.FieldSeq, snap[status.FieldSeq]).
			Msg("privileged snapshot received")
	})

	policy := retry.Policy{Delay: interval}
	policy.Forever(ctx, func(ctx context.Context) error {
		err := client.Stream(ctx)
		if ctx.Err() == nil {
			logger.Debug().Err(err).Msg("bridge feed lost, reconnecting")
		}
		return err
	})
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
