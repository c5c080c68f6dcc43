package emberforge

import (
	"context"
	"net"
	"time"

	"emberforge/internal/protocol"
)

const connectionTimeout = 10 * time.Second

// acceptLoop binds the listener and, for each accepted connection, gates
// admission on a permit from s.connSema before handing the connection to
// handleConnection on its own goroutine. It is the sole writer of
// shutdown results triggered by a listener bind failure.
func (s *SharedServer) acceptLoop(ctx context.Context) {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		s.Shutdown(err)
		return
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		if err := s.connSema.Acquire(ctx); err != nil {
			// Closed semaphore (or canceled context) means shutdown.
			return
		}

		conn, err := listener.Accept()
		if err != nil {
			s.connSema.Release()
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("failed to accept incoming connection", "error", err)
			continue
		}

		go func() {
			defer s.connSema.Release()
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				if err := tcpConn.SetNoDelay(true); err != nil {
					s.logger.Error("failed to set TCP nodelay", "error", err)
				}
			}
			remote := conn.RemoteAddr()
			if err := s.handleConnection(ctx, conn, remote); err != nil {
				s.logger.Debug("connection ended", "remote", remote, "error", err)
			}
		}()
	}
}

// handleConnection wraps the accepted stream in a codec, reads the
// handshake, and dispatches to the status or login handler.
func (s *SharedServer) handleConnection(ctx context.Context, conn net.Conn, remote net.Addr) error {
	defer conn.Close()

	codec := protocol.NewCodec(conn, connectionTimeout)

	pkt, err := codec.ReadPacket()
	if err != nil {
		return wrapf("reading handshake", err)
	}
	hs, err := protocol.DecodeHandshake(pkt.Data)
	if err != nil {
		return wrapf("decoding handshake", err)
	}

	if hs.NextState == protocol.NextStateStatus {
		return wrapf("error during status", s.handleStatus(ctx, codec, remote))
	}

	data, err := s.handleLogin(ctx, codec, remote)
	if err != nil {
		return wrapf("error during login", err)
	}
	if data == nil {
		return nil
	}
	return wrapf("error during play", s.handlePlay(ctx, codec, data))
}
