package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"codeberg.org/voss/hydractl/internal/config"
	"codeberg.org/voss/hydractl/internal/gateway"
	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/pid"
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
	if err := pid.Write("hydractl-gateway"); err != nil {
		logger.Fatal().Err(err).Msg("failed to write pidfile")
	}
	defer pid.Remove("hydractl-gateway")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	interval := time.Duration(cfg.Interval) * time.Second
	gw := gateway.New(gateway.Config{
		RootAddr:   net.JoinHostPort(cfg.ListenAddr, strconv.Itoa(cfg.RootPort)),
		UserAddr:   net.JoinHostPort(cfg.ListenAddr, strconv.Itoa(cfg.UserPort)),
		ListenAddr: net.JoinHostPort(cfg.ListenAddr, strconv.Itoa(cfg.GatewayPort)),
		BridgeAddr: net.JoinHostPort(cfg.ListenAddr, strconv.Itoa(cfg.BridgePort)),
		Interval:   interval,
		RetryDelay: interval,
	})

	if err := gw.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("error in gateway loop")
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
