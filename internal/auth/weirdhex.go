// Package auth implements the Mojang session-server handshake: RSA key
// exchange, the legacy "weird hex" server-hash encoding, and the HTTP call
// to the session server that authenticates a client's shared secret.
package auth

import (
	"crypto/sha1"
	"encoding/hex"
	"math/big"
)

// WeirdHexDigest computes vanilla's server hash: SHA-1 over the
// concatenation of serverID, the shared secret, and the server's DER-encoded
// public key, then reinterpreted as a signed two's-complement big integer
// and rendered in lowercase hex with a leading '-' for negative values and
// no leading zeros. This matches the legacy Minecraft.java digest used by
// the Mojang session server's hasJoined endpoint.
func WeirdHexDigest(serverID string, sharedSecret, publicKey []byte) string {
	h := sha1.New()
	h.Write([]byte(serverID))
	h.Write(sharedSecret)
	h.Write(publicKey)
	sum := h.Sum(nil)
	return weirdHexEncode(sum)
}

// weirdHexEncode reinterprets a byte slice as a signed two's-complement big
// integer and renders it the way Java's BigInteger(byte[]).toString(16)
// does: negative numbers are printed as their absolute value prefixed by
// '-', never as a two's-complement hex string.
func weirdHexEncode(sum []byte) string {
	negative := len(sum) > 0 && sum[0]&0x80 != 0
	n := new(big.Int).SetBytes(sum)
	if negative {
		// Two's complement negation over the digest's bit width.
		max := new(big.Int).Lsh(big.NewInt(1), uint(len(sum)*8))
		n.Sub(n, max)
		n.Neg(n)
		return "-" + trimHex(n.Bytes())
	}
	return trimHex(n.Bytes())
}

// trimHex renders b as lowercase hex with leading zero nibbles stripped,
// matching BigInteger's minimal representation (but keeping at least "0" if
// b is all zero or empty).
func trimHex(b []byte) string {
	s := hex.EncodeToString(b)
	if s == "" {
		return "0"
	}
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}
