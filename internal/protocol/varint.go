// Package protocol implements the Minecraft Java Edition wire framing: VarInt
// primitives, the handshake/status/login packet payloads, and the layered
// length-prefix / compression / encryption codec used once a connection moves
// past the handshake. Play-phase packet payloads are treated as opaque
// byte blobs — interpreting them is an embedding application's concern.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrVarIntTooBig is returned when a VarInt exceeds the 5-byte protocol limit.
var ErrVarIntTooBig = errors.New("protocol: varint is too big")

// ReadVarInt reads a Minecraft VarInt (1-5 bytes, little-endian 7-bit groups).
func ReadVarInt(r io.ByteReader) (int32, error) {
	var result int32
	var numRead uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int32(b&0x7F) << (7 * numRead)
		numRead++
		if numRead > 5 {
			return 0, ErrVarIntTooBig
		}
		if b&0x80 == 0 {
			break
		}
	}
	return result, nil
}

// WriteVarInt writes v to w in Minecraft VarInt encoding.
func WriteVarInt(w io.Writer, v int32) error {
	u := uint32(v)
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return err
		}
		if u == 0 {
			return nil
		}
	}
}

// VarIntSize returns the number of bytes v would occupy when VarInt-encoded.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// maxStringLen bounds incoming strings to protect against OOM from a
// malicious or malformed length prefix.
const maxStringLen = 1 << 17

// WriteString writes a VarInt-length-prefixed UTF-8 string.
func WriteString(w io.Writer, s string) error {
	if err := WriteVarInt(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a VarInt-length-prefixed UTF-8 string from r.
func ReadString(r *bytes.Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > maxStringLen {
		return "", errors.New("protocol: string too long")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadBytes reads a VarInt-length-prefixed byte array.
func ReadBytes(r *bytes.Reader) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n < 0 || int(n) > maxStringLen {
		return nil, errors.New("protocol: byte array too long")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteBytes writes a VarInt-length-prefixed byte array.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// WriteUint16 writes v big-endian, matching vanilla's unsigned short fields.
func WriteUint16(w io.Writer, v uint16) error {
	return binary.Write(w, binary.BigEndian, v)
}

// ReadUint16 reads a big-endian unsigned short.
func ReadUint16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

// WriteInt64 writes v big-endian.
func WriteInt64(w io.Writer, v int64) error {
	return binary.Write(w, binary.BigEndian, v)
}

// ReadInt64 reads a big-endian int64.
func ReadInt64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}
