package gateway_test

import (
	"context"
	"net"
	"testing"
	"time"

	"codeberg.org/voss/hydractl/internal/gateway"
	"codeberg.org/voss/hydractl/internal/statecell"
	"codeberg.org/voss/hydractl/internal/status"
	"codeberg.org/voss/hydractl/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tick      = 10 * time.Millisecond
	waitFor   = 3 * time.Second
	pollEvery = 5 * time.Millisecond
)

func reserveAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	return addr
}

// startFeed runs a node-style server publishing the given cell.
func startFeed(ctx context.Context, t *testing.T, name string, cell *statecell.Cell) string {
	t.Helper()

	addr := reserveAddr(t)
	server := wire.NewServer(name, addr, tick, tick, cell.Read)
	go server.Run(ctx)

	return addr
}

func TestGatewayMergesBothFeeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rootCell := statecell.New()
	rootCell.Write(status.Snapshot{"gpu0_temp": 60.0, status.FieldGovernor: "powersave"})
	userCell := statecell.New()
	userCell.Write(status.Snapshot{status.FieldPumpRPM: 1740.0, status.FieldLiquidTemp: 38.5})

	gw := gateway.New(gateway.Config{
		RootAddr:   startFeed(ctx, t, "root", rootCell),
		UserAddr:   startFeed(ctx, t, "user", userCell),
		ListenAddr: reserveAddr(t),
		BridgeAddr: reserveAddr(t),
		Interval:   tick,
		RetryDelay: tick,
	})
	go gw.Run(ctx)

	require.Eventually(t, func() bool {
		merged, ok := gw.Merged()
		return ok && merged["gpu0_temp"] == 60.0 && merged[status.FieldPumpRPM] == 1740.0
	}, waitFor, pollEvery, "gateway never combined both feeds")

	merged, ok := gw.Merged()
	require.True(t, ok)
	assert.Equal(t, "powersave", merged[status.FieldGovernor])
	assert.Equal(t, 38.5, merged[status.FieldLiquidTemp])
}

func TestGatewayServesOneFeedAlone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userCell := statecell.New()
	userCell.Write(status.Snapshot{status.FieldFanDuty: 83.0})

	// The privileged feed address points nowhere; only the user feed is up
	gw := gateway.New(gateway.Config{
		RootAddr:   reserveAddr(t),
		UserAddr:   startFeed(ctx, t, "user", userCell),
		ListenAddr: reserveAddr(t),
		BridgeAddr: reserveAddr(t),
		Interval:   tick,
		RetryDelay: tick,
	})
	go gw.Run(ctx)

	require.Eventually(t, func() bool {
		merged, ok := gw.Merged()
		return ok && merged[status.FieldFanDuty] == 83.0
	}, waitFor, pollEvery, "gateway must serve with a single live feed")
}

func TestGatewayOutwardAndBridgeServers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rootCell := statecell.New()
	rootCell.Write(status.Snapshot{"gpu0_temp": 60.0})
	userCell := statecell.New()
	userCell.Write(status.Snapshot{status.FieldLiquidTemp: 38.5})

	listenAddr := reserveAddr(t)
	bridgeAddr := reserveAddr(t)

	gw := gateway.New(gateway.Config{
		RootAddr:   startFeed(ctx, t, "root", rootCell),
		UserAddr:   startFeed(ctx, t, "user", userCell),
		ListenAddr: listenAddr,
		BridgeAddr: bridgeAddr,
		Interval:   tick,
		RetryDelay: tick,
	})
	go gw.Run(ctx)

	// Outward consumer sees the merged view
	outward := statecell.New()
	outwardClient := wire.NewClient("presentation", listenAddr, tick, outward.Write)
	go func() {
		for ctx.Err() == nil {
			outwardClient.Stream(ctx)
			time.Sleep(tick)
		}
	}()

	require.Eventually(t, func() bool {
		snap, ok := outward.Read()
		return ok && snap["gpu0_temp"] == 60.0 && snap[status.FieldLiquidTemp] == 38.5
	}, waitFor, pollEvery, "outward server never streamed the merged view")

	// Bridge consumer sees the privileged feed only
	bridge := statecell.New()
	bridgeClient := wire.NewClient("bridge", bridgeAddr, tick, bridge.Write)
	go func() {
		for ctx.Err() == nil {
			bridgeClient.Stream(ctx)
			time.Sleep(tick)
		}
	}()

	require.Eventually(t, func() bool {
		snap, ok := bridge.Read()
		return ok && snap["gpu0_temp"] == 60.0
	}, waitFor, pollEvery, "bridge server never streamed")

	snap, _ := bridge.Read()
	assert.NotContains(t, snap, status.FieldLiquidTemp, "bridge must carry root-origin data only")
}

func TestMergedBeforeAnyFeed(t *testing.T) {
	gw := gateway.New(gateway.Config{Interval: tick, RetryDelay: tick})

	_, ok := gw.Merged()
	assert.False(t, ok)
}
