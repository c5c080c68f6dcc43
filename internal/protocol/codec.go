package protocol

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/klauspost/compress/zlib"
)

// RawPacket is a decoded packet: a VarInt id plus its opaque payload. Payload
// interpretation (handshake/status/login fields, or play-phase semantics) is
// layered on top by callers — the codec only understands framing.
type RawPacket struct {
	ID   int32
	Data []byte
}

// compressionDisabled is the sentinel threshold meaning "no compression envelope yet".
const compressionDisabled = -1

// Codec frames packets over a net.Conn: length-prefix, then (once enabled by
// the login handler) a compression envelope, then (once enabled) AES/CFB8
// encryption over every byte including the length prefix. Every read and
// write is bounded by a fixed per-operation timeout.
type Codec struct {
	conn    net.Conn
	timeout time.Duration

	r io.Reader
	w io.Writer

	compressionThreshold int
}

// NewCodec wraps conn in a fresh plaintext, uncompressed Codec.
func NewCodec(conn net.Conn, timeout time.Duration) *Codec {
	return &Codec{
		conn:                  conn,
		timeout:               timeout,
		r:                     conn,
		w:                     conn,
		compressionThreshold:  compressionDisabled,
	}
}

// EnableEncryption switches both directions of the codec to AES/CFB8 using
// key as both the AES key and the CFB8 initialization vector, per the
// vanilla handshake convention. Must be called at most once.
func (c *Codec) EnableEncryption(key []byte) error {
	if len(key) != 16 {
		return fmt.Errorf("protocol: encryption key must be 16 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("protocol: constructing AES cipher: %w", err)
	}
	enc := newCFB8(block, key, false)
	dec := newCFB8(block, key, true)
	c.r = &cipher.StreamReader{S: dec, R: c.conn}
	c.w = &cipher.StreamWriter{S: enc, W: c.conn}
	return nil
}

// EnableCompression turns on the zlib compression envelope for every packet
// after this call, using threshold as the minimum uncompressed size that
// triggers actual compression (packets below it are sent with a zero data
// length, meaning "not compressed").
func (c *Codec) EnableCompression(threshold int) {
	c.compressionThreshold = threshold
}

type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

// ReadPacket reads and fully decodes the next packet, applying decryption
// and decompression as configured. It enforces the codec's timeout on the
// read.
func (c *Codec) ReadPacket() (RawPacket, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return RawPacket{}, fmt.Errorf("protocol: setting read deadline: %w", err)
	}

	br := &byteReader{r: c.r}
	length, err := ReadVarInt(br)
	if err != nil {
		return RawPacket{}, fmt.Errorf("protocol: reading packet length: %w", err)
	}
	if length < 0 || length > 1<<21 {
		return RawPacket{}, fmt.Errorf("protocol: invalid packet length %d", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return RawPacket{}, fmt.Errorf("protocol: reading packet body: %w", err)
	}

	payload, err := c.decompress(body)
	if err != nil {
		return RawPacket{}, err
	}

	pr := bytes.NewReader(payload)
	id, err := ReadVarInt(pr)
	if err != nil {
		return RawPacket{}, fmt.Errorf("protocol: reading packet id: %w", err)
	}
	data := make([]byte, pr.Len())
	if _, err := io.ReadFull(pr, data); err != nil {
		return RawPacket{}, fmt.Errorf("protocol: reading packet data: %w", err)
	}

	return RawPacket{ID: id, Data: data}, nil
}

func (c *Codec) decompress(body []byte) ([]byte, error) {
	if c.compressionThreshold < 0 {
		return body, nil
	}

	r := bytes.NewReader(body)
	dataLen, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("protocol: reading data length: %w", err)
	}
	if dataLen == 0 {
		// Not compressed: remainder is the plain id+data payload.
		rest := make([]byte, r.Len())
		_, err := io.ReadFull(r, rest)
		return rest, err
	}

	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("protocol: opening zlib reader: %w", err)
	}
	defer zr.Close()

	out := make([]byte, dataLen)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("protocol: decompressing packet: %w", err)
	}
	return out, nil
}

// WritePacket encodes and writes pkt, applying compression and encryption as
// configured. It enforces the codec's timeout on the write.
func (c *Codec) WritePacket(pkt RawPacket) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("protocol: setting write deadline: %w", err)
	}

	var inner bytes.Buffer
	if err := WriteVarInt(&inner, pkt.ID); err != nil {
		return err
	}
	inner.Write(pkt.Data)

	outer, err := c.compress(inner.Bytes())
	if err != nil {
		return err
	}

	var frame bytes.Buffer
	if err := WriteVarInt(&frame, int32(len(outer))); err != nil {
		return err
	}
	frame.Write(outer)

	if _, err := c.w.Write(frame.Bytes()); err != nil {
		return fmt.Errorf("protocol: writing packet: %w", err)
	}
	return nil
}

func (c *Codec) compress(inner []byte) ([]byte, error) {
	if c.compressionThreshold < 0 {
		return inner, nil
	}

	var outer bytes.Buffer
	if len(inner) < c.compressionThreshold {
		if err := WriteVarInt(&outer, 0); err != nil {
			return nil, err
		}
		outer.Write(inner)
		return outer.Bytes(), nil
	}

	if err := WriteVarInt(&outer, int32(len(inner))); err != nil {
		return nil, err
	}
	zw := zlib.NewWriter(&outer)
	if _, err := zw.Write(inner); err != nil {
		return nil, fmt.Errorf("protocol: compressing packet: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("protocol: closing zlib writer: %w", err)
	}
	return outer.Bytes(), nil
}

// ErrClosed names a closed connection. ReadPacket and WritePacket do not
// return it: they report a closed connection as the underlying I/O error
// (such as io.EOF), wrapped.
var ErrClosed = errors.New("protocol: connection closed")
