package emberforge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"

	"github.com/google/uuid"
)

// NewClientData describes a client that has finished authenticating and is
// about to be handed off to the tick loop's Config.Login callback.
type NewClientData struct {
	UUID       uuid.UUID
	Username   string
	Textures   *SignedPlayerTextures // nil in offline mode; online login fails without textures
	RemoteAddr net.Addr

	// sigData carries the opaque trailing bytes of LoginStart (the 16-byte
	// player UUID a modern client sends; nil if absent). Never interpreted.
	sigData []byte

	// msgSig carries the opaque message-signing signature from
	// EncryptionResponse's MsgSig variant, present only in online mode when
	// the client chose that variant over the verify-token one. Never
	// interpreted — message signing is out of scope.
	msgSig []byte
}

// SignedPlayerTextures holds a Mojang-signed "textures" profile property:
// the base64 payload (a JSON document naming the skin/cape URLs) plus its
// RSA signature, both opaque to emberforge beyond parsing the payload JSON.
type SignedPlayerTextures struct {
	payload   texturesPayload
	signature string
}

type texturesPayload struct {
	Timestamp int64 `json:"timestamp"`
	ProfileID string `json:"profileId"`
	Textures  struct {
		Skin struct {
			URL string `json:"url"`
		} `json:"SKIN"`
		Cape struct {
			URL string `json:"url"`
		} `json:"CAPE"`
	} `json:"textures"`
}

// ParseSignedPlayerTextures decodes the base64 "textures" profile property
// value Mojang's session server returns and pairs it with its signature.
func ParseSignedPlayerTextures(valueBase64, signature string) (*SignedPlayerTextures, error) {
	raw, err := base64.StdEncoding.DecodeString(valueBase64)
	if err != nil {
		return nil, fmt.Errorf("emberforge: decoding textures payload: %w", err)
	}
	var payload texturesPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("emberforge: parsing textures payload: %w", err)
	}
	return &SignedPlayerTextures{payload: payload, signature: signature}, nil
}

// SkinURL returns the player's skin URL, or "" if none was set.
func (t *SignedPlayerTextures) SkinURL() string {
	if t == nil {
		return ""
	}
	return t.payload.Textures.Skin.URL
}

// CapeURL returns the player's cape URL, or "" if none was set.
func (t *SignedPlayerTextures) CapeURL() string {
	if t == nil {
		return ""
	}
	return t.payload.Textures.Cape.URL
}

// Signature returns the RSA signature Mojang attached to this property.
func (t *SignedPlayerTextures) Signature() string {
	if t == nil {
		return ""
	}
	return t.signature
}
