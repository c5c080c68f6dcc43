package emberforge

import (
	"log/slog"
	"net"

	"github.com/google/uuid"

	"emberforge/internal/protocol"
)

// Client is the tick-loop-owned record for one connected player. It never
// touches the network directly — the connection goroutines on the other
// end of its channels own the socket, the codec, and packet framing. Client
// only ever sees protocol.RawPacket: interpreting play-state payloads is an
// embedding application's concern.
type Client struct {
	UUID       uuid.UUID
	Username   string
	Textures   *SignedPlayerTextures
	RemoteAddr net.Addr

	logger *slog.Logger

	outbound chan<- protocol.RawPacket
	inbound  <-chan protocol.RawPacket

	inbox  []protocol.RawPacket
	outbox []protocol.RawPacket
}

func newClient(data *NewClientData, logger *slog.Logger, outbound chan<- protocol.RawPacket, inbound <-chan protocol.RawPacket) *Client {
	return &Client{
		UUID:       data.UUID,
		Username:   data.Username,
		Textures:   data.Textures,
		RemoteAddr: data.RemoteAddr,
		logger:     logger,
		outbound:   outbound,
		inbound:    inbound,
	}
}

// IngestServerbound drains every packet currently buffered on the client's
// incoming channel into its inbox, replacing whatever was ingested on the
// previous tick. Called once per tick, before Config.Update, so serverbound
// packets are never handled a tick late.
func (c *Client) IngestServerbound() {
	c.inbox = c.inbox[:0]
	for {
		select {
		case pkt, ok := <-c.inbound:
			if !ok {
				return
			}
			c.inbox = append(c.inbox, pkt)
		default:
			return
		}
	}
}

// Inbox returns this tick's batch of serverbound packets ingested by
// IngestServerbound.
func (c *Client) Inbox() []protocol.RawPacket {
	return c.inbox
}

// Enqueue queues pkt to be sent to the client on the next FlushOutbound.
func (c *Client) Enqueue(pkt protocol.RawPacket) {
	c.outbox = append(c.outbox, pkt)
}

// FlushOutbound pushes every packet queued since the last flush onto the
// client's outgoing channel, best-effort: a client reading too slowly to
// keep its channel drained gets its packet dropped with a warning rather
// than stalling the tick loop.
func (c *Client) FlushOutbound() {
	for _, pkt := range c.outbox {
		select {
		case c.outbound <- pkt:
		default:
			c.logger.Warn("dropping outbound packet, client channel full",
				"remote", c.RemoteAddr, "username", c.Username, "packet_id", pkt.ID)
		}
	}
	c.outbox = c.outbox[:0]
}
