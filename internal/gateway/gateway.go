// Package gateway aggregates both node feeds and republishes the merged
// snapshot on the outward socket, plus the privileged feed alone on the
// bridge socket for the unprivileged node.
package gateway

import (
	"context"
	"sync"
	"time"

	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/retry"
	"codeberg.org/voss/hydractl/internal/statecell"
	"codeberg.org/voss/hydractl/internal/status"
	"codeberg.org/voss/hydractl/internal/wire"
)

// Config parameterizes the gateway: where the node feeds live and where to
// republish them.
type Config struct {
	RootAddr   string
	UserAddr   string
	ListenAddr string
	BridgeAddr string
	Interval   time.Duration
	RetryDelay time.Duration
}

// Gateway holds one cell per upstream feed. A feed that drops keeps its last
// snapshot in place, staleness markers and all, until the reconnect lands.
type Gateway struct {
	cfg      Config
	rootCell *statecell.Cell
	userCell *statecell.Cell
}

func New(cfg Config) *Gateway {
	return &Gateway{
		cfg:      cfg,
		rootCell: statecell.New(),
		userCell: statecell.New(),
	}
}

// Merged is the outward source: both feeds combined, the privileged feed
// winning on key collision. Nothing is served until at least one feed has
// produced.
func (g *Gateway) Merged() (status.Snapshot, bool) {
	rootSnap, rootOK := g.rootCell.Read()
	userSnap, userOK := g.userCell.Read()
	if !rootOK && !userOK {
		return nil, false
	}

	return status.Merge(userSnap, rootSnap), true
}

// Run starts both upstream clients and both servers and blocks until ctx is
// cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	g.consume(ctx, &wg, "root", g.cfg.RootAddr, g.rootCell)
	g.consume(ctx, &wg, "user", g.cfg.UserAddr, g.userCell)

	outward := wire.NewServer("gateway", g.cfg.ListenAddr, g.cfg.Interval, g.cfg.RetryDelay, g.Merged)
	bridge := wire.NewServer("bridge", g.cfg.BridgeAddr, g.cfg.Interval, g.cfg.RetryDelay, g.rootCell.Read)

	wg.Add(2)
	go func() {
		defer wg.Done()
		outward.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		bridge.Run(ctx)
	}()

	wg.Wait()

	return ctx.Err()
}

// consume keeps one upstream client connected forever, writing every received
// snapshot into its cell.
func (g *Gateway) consume(ctx context.Context, wg *sync.WaitGroup, name, addr string, cell *statecell.Cell) {
	client := wire.NewClient(name, addr, g.cfg.Interval, cell.Write)
	policy := retry.Policy{Delay: g.cfg.RetryDelay}

	wg.Add(1)
	go func() {
		defer wg.Done()
		policy.Forever(ctx, func(ctx context.Context) error {
			err := client.Stream(ctx)
			if ctx.Err() == nil {
				logger.Debug().Str("feed", name).Err(err).Msg("upstream feed lost, reconnecting")
			}
			return err
		})
	}()
}
