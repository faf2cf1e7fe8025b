// Package wire implements the push channel between nodes: one TCP server per
// publishing node streaming newline-delimited JSON snapshots to a single peer,
// and the client that consumes such a stream.
package wire

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"codeberg.org/voss/hydractl/internal/errors"
	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/retry"
	"codeberg.org/voss/hydractl/internal/status"
)

// Source produces the snapshot to push on the next tick, or ok=false when
// nothing has been published yet.
type Source func() (status.Snapshot, bool)

// Server pushes a node's latest snapshot to whichever peer is connected.
// One peer at a time: LISTENING -> ACCEPTED -> STREAMING -> LISTENING.
type Server struct {
	name       string
	addr       string
	interval   time.Duration
	retryDelay time.Duration
	source     Source
}

// NewServer returns a server for addr pushing source's snapshot every
// interval. retryDelay paces bind retries; stream teardown is immediate.
func NewServer(name, addr string, interval, retryDelay time.Duration, source Source) *Server {
	return &Server{
		name:       name,
		addr:       addr,
		interval:   interval,
		retryDelay: retryDelay,
		source:     source,
	}
}

// Run binds once and serves peers until ctx is cancelled. A failed bind is
// retried after the fixed delay, forever. Peer loss returns the server to
// accept without delay.
func (s *Server) Run(ctx context.Context) error {
	errFactory := errors.New()

	var listener net.Listener
	bind := retry.Policy{Delay: s.retryDelay}
	err := bind.Run(ctx, func(ctx context.Context) error {
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", s.addr)
		if err != nil {
			logger.Warn().Str("server", s.name).Str("addr", s.addr).Err(err).Msg("bind failed, retrying")
			return errFactory.Wrap(errors.ErrListenFailed, err)
		}
		listener = ln

		return nil
	})
	if err != nil {
		return err
	}

	// Unblock Accept on shutdown
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	defer listener.Close()

	logger.Info().Str("server", s.name).Str("addr", s.addr).Msg("listening")

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Str("server", s.name).Err(err).Msg("accept failed")
			if err := sleep(ctx, s.retryDelay); err != nil {
				return err
			}
			continue
		}

		logger.Info().Str("server", s.name).Str("peer", conn.RemoteAddr().String()).Msg("peer connected")
		if err := s.stream(ctx, conn); err != nil && ctx.Err() == nil {
			logger.Info().Str("server", s.name).Err(err).Msg("peer lost, listening again")
		}
		conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// stream pushes one snapshot per tick until the peer goes away. The peer's
// bytes are read only to detect liveness; their content is ignored.
func (s *Server) stream(ctx context.Context, conn net.Conn) error {
	errFactory := errors.New()

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		buf := make([]byte, 64)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()

	enc := json.NewEncoder(conn)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-streamCtx.Done():
			return errFactory.New(errors.ErrPeerLost)
		case <-ticker.C:
			snap, ok := s.source()
			if !ok {
				continue
			}
			if err := enc.Encode(snap); err != nil {
				return errFactory.Wrap(errors.ErrPeerLost, err)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
