package emberforge

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"

	"emberforge/internal/auth"
	"emberforge/internal/protocol"
)

const compressionThreshold = 256

// handleLogin drives the login state machine (4.D): username validation,
// optional RSA key exchange and Mojang verification, then compression and
// the user Login callback. It returns (nil, nil) on a clean user-initiated
// disconnect and (data, nil) on success.
func (s *SharedServer) handleLogin(ctx context.Context, codec *protocol.Codec, remote net.Addr) (*NewClientData, error) {
	pkt, err := codec.ReadPacket()
	if err != nil {
		return nil, wrapf("reading login start", err)
	}
	if pkt.ID != protocol.LoginStartID {
		return nil, fmt.Errorf("emberforge: expected login start packet, got id %d", pkt.ID)
	}
	start, err := protocol.DecodeLoginStart(pkt.Data)
	if err != nil {
		return nil, wrapf("decoding login start", err)
	}
	if err := auth.ValidateUsername(start.Name); err != nil {
		return nil, err
	}

	var (
		playerUUID = auth.OfflineUUID(start.Name)
		textures   *SignedPlayerTextures
		msgSig     []byte
	)

	if s.onlineMode {
		playerUUID, textures, msgSig, err = s.authenticateOnline(ctx, codec, start.Name, remote)
		if err != nil {
			return nil, err
		}
	}

	if err := codec.WritePacket(protocol.RawPacket{
		ID:   protocol.LoginSetCompressionID,
		Data: protocol.EncodeSetCompression(protocol.SetCompression{Threshold: compressionThreshold}),
	}); err != nil {
		return nil, wrapf("writing set compression", err)
	}
	codec.EnableCompression(compressionThreshold)

	data := &NewClientData{
		UUID:       playerUUID,
		Username:   start.Name,
		Textures:   textures,
		RemoteAddr: remote,
		sigData:    start.UUID,
		msgSig:     msgSig,
	}

	if err := s.cfg.Login(ctx, data); err != nil {
		s.logger.Info("disconnect at login", "remote", remote, "username", start.Name, "reason", err)
		if werr := codec.WritePacket(protocol.RawPacket{
			ID:   protocol.LoginDisconnectID,
			Data: protocol.EncodeDisconnect(protocol.Disconnect{Reason: jsonTextComponent(err.Error())}),
		}); werr != nil {
			return nil, wrapf("writing login disconnect", werr)
		}
		return nil, nil
	}

	var uuidArr [16]byte
	copy(uuidArr[:], playerUUID[:])
	if err := codec.WritePacket(protocol.RawPacket{
		ID: protocol.LoginSuccessID,
		Data: protocol.EncodeLoginSuccess(protocol.LoginSuccess{
			UUID:     uuidArr,
			Username: start.Name,
		}),
	}); err != nil {
		return nil, wrapf("writing login success", err)
	}

	return data, nil
}

// authenticateOnline runs the RSA key exchange and Mojang session-server
// verification, enabling encryption on codec before returning. msgSig is
// non-nil only when the client's EncryptionResponse carried the
// message-signing variant instead of a verify token (see
// protocol.EncryptionResponse) — it is returned as an opaque value, never
// interpreted.
func (s *SharedServer) authenticateOnline(ctx context.Context, codec *protocol.Codec, username string, remote net.Addr) (playerUUID [16]byte, textures *SignedPlayerTextures, msgSig []byte, err error) {
	var zero [16]byte

	verifyToken := make([]byte, 16)
	if _, err := rand.Read(verifyToken); err != nil {
		return zero, nil, nil, wrapf("generating verify token", err)
	}

	if err := codec.WritePacket(protocol.RawPacket{
		ID: protocol.LoginEncryptionRequestID,
		Data: protocol.EncodeEncryptionRequest(protocol.EncryptionRequest{
			ServerID:    "",
			PublicKey:   s.publicKeyDER,
			VerifyToken: verifyToken,
		}),
	}); err != nil {
		return zero, nil, nil, wrapf("writing encryption request", err)
	}

	pkt, err := codec.ReadPacket()
	if err != nil {
		return zero, nil, nil, wrapf("reading encryption response", err)
	}
	if pkt.ID != protocol.LoginEncryptionResponseID {
		return zero, nil, nil, fmt.Errorf("emberforge: expected encryption response packet, got id %d", pkt.ID)
	}
	resp, err := protocol.DecodeEncryptionResponse(pkt.Data)
	if err != nil {
		return zero, nil, nil, wrapf("decoding encryption response", err)
	}

	sharedSecret, err := s.keyPair.Decrypt(resp.SharedSecret)
	if err != nil {
		return zero, nil, nil, wrapf("failed to decrypt shared secret", err)
	}
	if len(sharedSecret) != 16 {
		return zero, nil, nil, fmt.Errorf("emberforge: shared secret has the wrong length (%d)", len(sharedSecret))
	}

	var outMsgSig []byte
	if resp.HasVerifyToken {
		decryptedToken, err := s.keyPair.Decrypt(resp.VerifyToken)
		if err != nil {
			return zero, nil, nil, wrapf("failed to decrypt verify token", err)
		}
		if subtle.ConstantTimeCompare(decryptedToken, verifyToken) != 1 {
			return zero, nil, nil, fmt.Errorf("emberforge: verify tokens do not match")
		}
	} else {
		// Message-signing variant: carried forward opaque, never verified
		// (see spec's Open Questions).
		outMsgSig = resp.MessageSignature
	}

	if err := codec.EnableEncryption(sharedSecret); err != nil {
		return zero, nil, nil, wrapf("enabling encryption", err)
	}

	serverHash := auth.WeirdHexDigest("", sharedSecret, s.publicKeyDER)

	ip, _, _ := net.SplitHostPort(remote.String())
	resp2, err := auth.HasJoined(ctx, s.httpClient, username, serverHash, ip)
	if err != nil {
		return zero, nil, nil, wrapf("session server request failed", err)
	}
	if resp2.Name != username {
		return zero, nil, nil, fmt.Errorf("emberforge: usernames do not match")
	}
	uuid, err := auth.ParseMojangUUID(resp2.ID)
	if err != nil {
		return zero, nil, nil, wrapf("failed to parse player's UUID", err)
	}

	var texturesProp *SignedPlayerTextures
	for _, p := range resp2.Properties {
		if p.Name != "textures" {
			continue
		}
		if p.Signature == "" {
			return zero, nil, nil, fmt.Errorf("emberforge: missing signature for textures")
		}
		texturesProp, err = ParseSignedPlayerTextures(p.Value, p.Signature)
		if err != nil {
			return zero, nil, nil, err
		}
	}
	if texturesProp == nil {
		return zero, nil, nil, fmt.Errorf("emberforge: failed to find textures in auth response")
	}

	return uuid, texturesProp, outMsgSig, nil
}

// jsonTextComponent wraps text as the simplest valid chat-component JSON:
// {"text": "..."}.
func jsonTextComponent(text string) string {
	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		// Marshaling a struct with a single string field cannot fail.
		return `{"text":""}`
	}
	return string(body)
}
