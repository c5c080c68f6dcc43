package protocol

import (
	"bytes"
	"fmt"
)

// Packet IDs for the handshake, status and login states. Play-state packet
// IDs are an embedding application's concern and never appear here.
const (
	HandshakeID = 0x00

	StatusRequestID  = 0x00
	StatusPongID     = 0x01
	StatusResponseID = 0x00
	StatusPingID     = 0x01

	LoginStartID              = 0x00
	LoginEncryptionResponseID = 0x01
	LoginPluginResponseID     = 0x02

	LoginDisconnectID         = 0x00
	LoginEncryptionRequestID  = 0x01
	LoginSuccessID            = 0x02
	LoginSetCompressionID     = 0x03
)

// NextState is the handshake's declared intent for the following state.
type NextState int32

const (
	NextStateStatus NextState = 1
	NextStateLogin  NextState = 2
)

// Handshake is the single packet sent in the Handshake state.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       NextState
}

// DecodeHandshake parses a Handshake packet's data payload.
func DecodeHandshake(data []byte) (Handshake, error) {
	r := bytes.NewReader(data)
	protocolVersion, err := ReadVarInt(r)
	if err != nil {
		return Handshake{}, fmt.Errorf("protocol: handshake protocol version: %w", err)
	}
	addr, err := ReadString(r)
	if err != nil {
		return Handshake{}, fmt.Errorf("protocol: handshake server address: %w", err)
	}
	port, err := ReadUint16(r)
	if err != nil {
		return Handshake{}, fmt.Errorf("protocol: handshake server port: %w", err)
	}
	next, err := ReadVarInt(r)
	if err != nil {
		return Handshake{}, fmt.Errorf("protocol: handshake next state: %w", err)
	}
	if next != int32(NextStateStatus) && next != int32(NextStateLogin) {
		return Handshake{}, fmt.Errorf("protocol: handshake next state %d out of range", next)
	}
	return Handshake{
		ProtocolVersion: protocolVersion,
		ServerAddress:   addr,
		ServerPort:      port,
		NextState:       NextState(next),
	}, nil
}

// StatusResponsePayload is the JSON document sent in response to a status
// request. Field names and shape match vanilla's status protocol exactly.
type StatusResponsePayload struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
		// Sample is intentionally never populated (see DESIGN.md).
		Sample []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"sample,omitempty"`
	} `json:"players"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	Favicon string `json:"favicon,omitempty"`
}

// PingPayload carries the opaque nonce exchanged by status ping/pong.
type PingPayload struct {
	Payload int64
}

func DecodePing(data []byte) (PingPayload, error) {
	v, err := ReadInt64(bytes.NewReader(data))
	if err != nil {
		return PingPayload{}, fmt.Errorf("protocol: ping payload: %w", err)
	}
	return PingPayload{Payload: v}, nil
}

func EncodePong(p PingPayload) []byte {
	var buf bytes.Buffer
	_ = WriteInt64(&buf, p.Payload)
	return buf.Bytes()
}

// LoginStart is the first login-state packet, naming the connecting player.
type LoginStart struct {
	Name string
	// UUID is the player's offline/online UUID as sent by modern clients, or
	// nil on clients old enough not to send one. Opaque on the wire.
	UUID []byte
}

func DecodeLoginStart(data []byte) (LoginStart, error) {
	r := bytes.NewReader(data)
	name, err := ReadString(r)
	if err != nil {
		return LoginStart{}, fmt.Errorf("protocol: login start name: %w", err)
	}
	ls := LoginStart{Name: name}
	if r.Len() >= 16 {
		uuid := make([]byte, 16)
		if _, err := r.Read(uuid); err == nil {
			ls.UUID = uuid
		}
	}
	return ls, nil
}

// EncryptionRequest is sent by the server to begin the shared-secret
// exchange.
type EncryptionRequest struct {
	ServerID    string // always empty in modern vanilla
	PublicKey   []byte // DER-encoded RSA public key
	VerifyToken []byte
}

func EncodeEncryptionRequest(r EncryptionRequest) []byte {
	var buf bytes.Buffer
	_ = WriteString(&buf, r.ServerID)
	_ = WriteBytes(&buf, r.PublicKey)
	_ = WriteBytes(&buf, r.VerifyToken)
	return buf.Bytes()
}

// EncryptionResponse is the client's reply: the RSA-encrypted shared secret
// plus a tagged union the client chooses between — either the RSA-encrypted
// verify token from EncryptionRequest, or (on clients with chat-signing
// enabled) a salt and message signature that replace the verify-token
// check entirely. Exactly one of VerifyToken or (Salt, MessageSignature)
// is populated, selected by HasVerifyToken.
type EncryptionResponse struct {
	SharedSecret []byte

	HasVerifyToken bool

	VerifyToken []byte // set when HasVerifyToken

	Salt             int64  // set when !HasVerifyToken
	MessageSignature []byte // set when !HasVerifyToken
}

func DecodeEncryptionResponse(data []byte) (EncryptionResponse, error) {
	r := bytes.NewReader(data)
	secret, err := ReadBytes(r)
	if err != nil {
		return EncryptionResponse{}, fmt.Errorf("protocol: encryption response shared secret: %w", err)
	}

	hasToken, err := r.ReadByte()
	if err != nil {
		return EncryptionResponse{}, fmt.Errorf("protocol: encryption response token discriminator: %w", err)
	}

	if hasToken != 0 {
		token, err := ReadBytes(r)
		if err != nil {
			return EncryptionResponse{}, fmt.Errorf("protocol: encryption response verify token: %w", err)
		}
		return EncryptionResponse{SharedSecret: secret, HasVerifyToken: true, VerifyToken: token}, nil
	}

	salt, err := ReadInt64(r)
	if err != nil {
		return EncryptionResponse{}, fmt.Errorf("protocol: encryption response salt: %w", err)
	}
	sig, err := ReadBytes(r)
	if err != nil {
		return EncryptionResponse{}, fmt.Errorf("protocol: encryption response message signature: %w", err)
	}
	return EncryptionResponse{SharedSecret: secret, HasVerifyToken: false, Salt: salt, MessageSignature: sig}, nil
}

// SetCompression announces the compression threshold the client must start
// honoring on its next packet.
type SetCompression struct {
	Threshold int32
}

func EncodeSetCompression(s SetCompression) []byte {
	var buf bytes.Buffer
	_ = WriteVarInt(&buf, s.Threshold)
	return buf.Bytes()
}

// LoginSuccess finalizes the login state and moves the connection to Play.
type LoginSuccess struct {
	UUID       [16]byte
	Username   string
	Properties []LoginSuccessProperty
}

type LoginSuccessProperty struct {
	Name      string
	Value     string
	Signature string // empty means "not signed"
}

func EncodeLoginSuccess(s LoginSuccess) []byte {
	var buf bytes.Buffer
	buf.Write(s.UUID[:])
	_ = WriteString(&buf, s.Username)
	_ = WriteVarInt(&buf, int32(len(s.Properties)))
	for _, p := range s.Properties {
		_ = WriteString(&buf, p.Name)
		_ = WriteString(&buf, p.Value)
		if p.Signature != "" {
			_ = WriteBoolByte(&buf, true)
			_ = WriteString(&buf, p.Signature)
		} else {
			_ = WriteBoolByte(&buf, false)
		}
	}
	return buf.Bytes()
}

// WriteBoolByte writes b as a single 0x00/0x01 byte.
func WriteBoolByte(w *bytes.Buffer, b bool) error {
	if b {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
	return nil
}

// Disconnect carries a JSON chat-component reason, sent from either the
// Login or Play state.
type Disconnect struct {
	Reason string // raw JSON text component
}

func EncodeDisconnect(d Disconnect) []byte {
	var buf bytes.Buffer
	_ = WriteString(&buf, d.Reason)
	return buf.Bytes()
}
