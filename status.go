package emberforge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net"

	"emberforge/internal/protocol"
)

// handleStatus answers a server-list ping: one StatusRequest/StatusResponse
// exchange followed by one PingRequest/PongResponse exchange.
func (s *SharedServer) handleStatus(ctx context.Context, codec *protocol.Codec, remote net.Addr) error {
	if _, err := codec.ReadPacket(); err != nil {
		return wrapf("reading status request", err)
	}

	ping, ok := s.cfg.ServerListPing(ctx, remote.String())
	if !ok {
		return nil
	}

	payload := buildStatusJSON(s, ping)
	body, err := json.Marshal(payload)
	if err != nil {
		return wrapf("marshaling status response", err)
	}

	if err := codec.WritePacket(protocol.RawPacket{ID: protocol.StatusResponseID, Data: statusResponseData(string(body))}); err != nil {
		return wrapf("writing status response", err)
	}

	pkt, err := codec.ReadPacket()
	if err != nil {
		return wrapf("reading ping request", err)
	}
	pingPayload, err := protocol.DecodePing(pkt.Data)
	if err != nil {
		return wrapf("decoding ping request", err)
	}
	if err := codec.WritePacket(protocol.RawPacket{ID: protocol.StatusPongID, Data: protocol.EncodePong(pingPayload)}); err != nil {
		return wrapf("writing pong response", err)
	}
	return nil
}

func buildStatusJSON(s *SharedServer, ping ServerListPing) protocol.StatusResponsePayload {
	var payload protocol.StatusResponsePayload
	payload.Version.Name = s.VersionName()
	payload.Version.Protocol = s.ProtocolVersion()
	payload.Players.Online = ping.OnlinePlayers
	payload.Players.Max = ping.MaxPlayers
	payload.Description.Text = ping.Description
	if len(ping.FaviconPNG) > 0 {
		payload.Favicon = "data:image/png;base64," + base64.StdEncoding.EncodeToString(ping.FaviconPNG)
	}
	return payload
}

func statusResponseData(jsonText string) []byte {
	var buf bytes.Buffer
	_ = protocol.WriteString(&buf, jsonText)
	return buf.Bytes()
}
