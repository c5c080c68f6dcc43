package emberforge

import (
	"context"

	"github.com/google/uuid"

	"emberforge/internal/protocol"
)

// handlePlay performs the session handoff (4.E): deliver the authenticated
// client's data to the tick loop, wait for its reply with the matched
// channel pair, then bridge socket I/O onto those channels for the
// remainder of the session. It returns once the connection drops, having
// notified the tick loop to remove the Client.
func (s *SharedServer) handlePlay(ctx context.Context, codec *protocol.Codec, data *NewClientData) error {
	reply := make(chan s2cPacketChannels, 1)

	select {
	case s.newClientsCh <- newClientMessage{data: data, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}

	var channels s2cPacketChannels
	select {
	case channels = <-reply:
	case <-ctx.Done():
		return ctx.Err()
	}

	writerStop := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case pkt := <-channels.outbound:
				if err := codec.WritePacket(pkt); err != nil {
					s.logger.Debug("error while sending play packet", "username", data.Username, "error", err)
					return
				}
			case <-writerStop:
				return
			}
		}
	}()

	var readErr error
readLoop:
	for {
		pkt, err := codec.ReadPacket()
		if err != nil {
			readErr = err
			break readLoop
		}
		select {
		case channels.inbound <- pkt:
		case <-ctx.Done():
			readErr = ctx.Err()
			break readLoop
		}
	}

	close(writerStop)
	<-writerDone
	s.disconnect(data.UUID)
	return readErr
}

// disconnect asks the tick loop to remove this client. It never blocks: if
// the disconnect queue is full (a backlog that large would indicate the
// tick loop has stalled entirely), the notification is dropped with a
// warning and the client stays registered.
func (s *SharedServer) disconnect(id uuid.UUID) {
	select {
	case s.disconnectsCh <- id:
	default:
		s.logger.Warn("disconnect queue full, client removal dropped", "uuid", id)
	}
}
