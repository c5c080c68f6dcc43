package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// SessionServerURL is a var rather than a const so tests (in this package
// and in emberforge's own) can point it at a local fixture server.
var SessionServerURL = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

// KeyPair is the server's per-process RSA key pair used for the
// EncryptionRequest/EncryptionResponse exchange.
type KeyPair struct {
	Private *rsa.PrivateKey
}

// GenerateKeyPair produces a fresh 1024-bit RSA key pair, matching vanilla's
// key size for the login encryption handshake.
func GenerateKeyPair() (*KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		return nil, fmt.Errorf("auth: generating RSA key pair: %w", err)
	}
	return &KeyPair{Private: key}, nil
}

// PublicKeyDER returns the ASN.1 DER encoding of the public key, the form
// sent on the wire in EncryptionRequest.
func (k *KeyPair) PublicKeyDER() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.Private.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("auth: marshaling public key: %w", err)
	}
	return der, nil
}

// Decrypt reverses the client's PKCS#1 v1.5 RSA encryption of the shared
// secret or verify token.
func (k *KeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	plain, err := rsa.DecryptPKCS1v15(rand.Reader, k.Private, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("auth: RSA decrypt: %w", err)
	}
	return plain, nil
}

// HasJoinedResponse is the session server's reply to a successful join
// check: the authenticated player's Mojang account UUID and profile
// properties (most notably the signed skin/cape "textures" property).
type HasJoinedResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Properties []struct {
		Name      string `json:"name"`
		Value     string `json:"value"`
		Signature string `json:"signature,omitempty"`
	} `json:"properties"`
}

// ErrNotAuthenticated is returned when the session server reports the
// client never purchased/authenticated the session (HTTP 204 or 403).
var ErrNotAuthenticated = fmt.Errorf("auth: session server did not authenticate this client")

// HasJoined asks the Mojang session server whether username has reported
// joining serverHash, returning the authenticated profile on success. ip,
// if non-empty, is forwarded as the "ip" query parameter Mojang uses for
// its optional prevent-proxy-connections check; pass "" to omit it.
func HasJoined(ctx context.Context, client *http.Client, username, serverHash, ip string) (*HasJoinedResponse, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	q := url.Values{}
	q.Set("username", username)
	q.Set("serverId", serverHash)
	if ip != "" {
		q.Set("ip", ip)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, SessionServerURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building session server request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling session server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusForbidden {
		return nil, ErrNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: session server returned status %d", resp.StatusCode)
	}

	var out HasJoinedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("auth: decoding session server response: %w", err)
	}
	return &out, nil
}

// ParseMojangUUID parses the session server's undashed 32-hex-digit id into
// a canonical UUID.
func ParseMojangUUID(id string) (uuid.UUID, error) {
	if len(id) != 32 {
		return uuid.UUID{}, fmt.Errorf("auth: mojang id %q is not 32 hex digits", id)
	}
	dashed := fmt.Sprintf("%s-%s-%s-%s-%s", id[0:8], id[8:12], id[12:16], id[16:20], id[20:32])
	u, err := uuid.Parse(dashed)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("auth: parsing mojang id %q: %w", id, err)
	}
	return u, nil
}

// OfflineUUID derives the offline-mode player UUID as the first 16 bytes
// of SHA-256(username), taken verbatim with no version/variant bits
// rewritten.
func OfflineUUID(username string) uuid.UUID {
	sum := sha256.Sum256([]byte(username))
	var u uuid.UUID
	copy(u[:], sum[:16])
	return u
}

// ValidateUsername enforces vanilla's username charset and length limits.
func ValidateUsername(name string) error {
	if len(name) == 0 || len(name) > 16 {
		return fmt.Errorf("auth: username %q must be 1-16 characters", name)
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return fmt.Errorf("auth: username %q contains invalid character %q", name, r)
		}
	}
	return nil
}
