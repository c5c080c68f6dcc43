package emberforge

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emberforge/internal/auth"
	"emberforge/internal/protocol"
)

func encodeLoginStart(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, protocol.WriteString(&buf, name))
	return buf.Bytes()
}

func TestHandleLoginOfflineModeSucceeds(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	cfg := newFakeConfig()
	s, err := SetupServer(cfg)
	require.NoError(t, err)

	clientCodec := protocol.NewCodec(clientConn, time.Second)
	serverCodec := protocol.NewCodec(serverConn, time.Second)

	clientErrCh := make(chan error, 1)
	go func() {
		clientErrCh <- clientCodec.WritePacket(protocol.RawPacket{
			ID:   protocol.LoginStartID,
			Data: encodeLoginStart(t, "Steve"),
		})
	}()

	var data *NewClientData
	doneCh := make(chan error, 1)
	go func() {
		d, err := s.handleLogin(context.Background(), serverCodec, serverConn.RemoteAddr())
		data = d
		doneCh <- err
	}()

	require.NoError(t, <-clientErrCh)

	// Server should send SetCompression then LoginSuccess; drain both.
	pkt, err := clientCodec.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, int32(protocol.LoginSetCompressionID), pkt.ID)
	clientCodec.EnableCompression(compressionThreshold)

	pkt, err = clientCodec.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, int32(protocol.LoginSuccessID), pkt.ID)

	require.NoError(t, <-doneCh)
	require.NotNil(t, data)
	assert.Equal(t, "Steve", data.Username)
	assert.Equal(t, auth.OfflineUUID("Steve"), data.UUID)
	assert.NotNil(t, cfg.lastLogin)
}

func TestHandleLoginRejectsBadUsername(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	cfg := newFakeConfig()
	s, err := SetupServer(cfg)
	require.NoError(t, err)

	clientCodec := protocol.NewCodec(clientConn, time.Second)
	serverCodec := protocol.NewCodec(serverConn, time.Second)

	clientErrCh := make(chan error, 1)
	go func() {
		clientErrCh <- clientCodec.WritePacket(protocol.RawPacket{
			ID:   protocol.LoginStartID,
			Data: encodeLoginStart(t, "has space"),
		})
	}()

	_, err = s.handleLogin(context.Background(), serverCodec, serverConn.RemoteAddr())
	assert.Error(t, err)
	require.NoError(t, <-clientErrCh)
}

func TestHandleLoginDisconnectsWhenConfigRejects(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	cfg := newFakeConfig()
	cfg.loginErr = assert.AnError
	s, err := SetupServer(cfg)
	require.NoError(t, err)

	clientCodec := protocol.NewCodec(clientConn, time.Second)
	serverCodec := protocol.NewCodec(serverConn, time.Second)

	clientErrCh := make(chan error, 1)
	go func() {
		clientErrCh <- clientCodec.WritePacket(protocol.RawPacket{
			ID:   protocol.LoginStartID,
			Data: encodeLoginStart(t, "Steve"),
		})
	}()

	doneCh := make(chan struct {
		data *NewClientData
		err  error
	}, 1)
	go func() {
		d, err := s.handleLogin(context.Background(), serverCodec, serverConn.RemoteAddr())
		doneCh <- struct {
			data *NewClientData
			err  error
		}{d, err}
	}()

	require.NoError(t, <-clientErrCh)

	pkt, err := clientCodec.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, int32(protocol.LoginSetCompressionID), pkt.ID)
	clientCodec.EnableCompression(compressionThreshold)

	pkt, err = clientCodec.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, int32(protocol.LoginDisconnectID), pkt.ID)

	got := <-doneCh
	assert.NoError(t, got.err)
	assert.Nil(t, got.data, "a config-rejected login returns (nil, nil)")
}
