package wire

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"codeberg.org/voss/hydractl/internal/errors"
	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/status"
)

const dialTimeout = 5 * time.Second

// Sink stores one received snapshot, typically into the consumer's state cell.
type Sink func(status.Snapshot)

// Client consumes a server's push stream. It connects once per Stream call;
// re-establishing a lost connection is the owner's responsibility, wired
// through a retry policy around Stream.
type Client struct {
	name     string
	addr     string
	interval time.Duration
	sink     Sink
}

// NewClient returns a client for the server at addr, delivering each received
// snapshot to sink. interval paces the liveness ping to the server.
func NewClient(name, addr string, interval time.Duration, sink Sink) *Client {
	return &Client{
		name:     name,
		addr:     addr,
		interval: interval,
		sink:     sink,
	}
}

// Stream dials the server and consumes pushed documents until the connection
// is lost or ctx is cancelled. A non-nil return means "reconnect needed".
func (c *Client) Stream(ctx context.Context) error {
	errFactory := errors.New()

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return errFactory.Wrap(errors.ErrConnectFailed, err)
	}
	defer conn.Close()

	logger.Info().Str("client", c.name).Str("addr", c.addr).Msg("connected")

	// Unblock the decoder on shutdown
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-streamCtx.Done()
		conn.Close()
	}()

	// The server reads us only to detect liveness; content is ignored.
	go c.ping(streamCtx, conn)

	dec := json.NewDecoder(conn)
	for {
		var snap status.Snapshot
		if err := dec.Decode(&snap); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return errFactory.Wrap(errors.ErrPeerLost, err)
		}

		logger.Debug().Str("client", c.name).Int("fields", len(snap)).Msg("snapshot received")
		c.sink(snap)
	}
}

func (c *Client) ping(ctx context.Context, conn net.Conn) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := conn.Write([]byte("1\n")); err != nil {
				return
			}
		}
	}
}
