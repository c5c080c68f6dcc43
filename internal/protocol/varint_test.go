package protocol

import (
	"bytes"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	cases := []int32{0, 1, 2, 127, 128, 255, 2097151, 2147483647, -1, -2147483648}
	for _, v := range cases {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", v, err)
		}
		if buf.Len() != VarIntSize(v) {
			t.Errorf("VarIntSize(%d) = %d, wrote %d bytes", v, VarIntSize(v), buf.Len())
		}
		got, err := ReadVarInt(&byteReader{r: &buf})
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}
}

func TestVarIntKnownEncodings(t *testing.T) {
	cases := []struct {
		v    int32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{25565, []byte{0xdd, 0xc7, 0x01}},
		{-1, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, c.v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", c.v, err)
		}
		if !bytes.Equal(buf.Bytes(), c.want) {
			t.Errorf("WriteVarInt(%d) = %x, want %x", c.v, buf.Bytes(), c.want)
		}
	}
}

func TestReadVarIntTooBig(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	if _, err := ReadVarInt(&byteReader{r: buf}); err != ErrVarIntTooBig {
		t.Fatalf("got err %v, want ErrVarIntTooBig", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "a", "localhost", "こんにちは"}
	for _, s := range cases {
		var buf bytes.Buffer
		if err := WriteString(&buf, s); err != nil {
			t.Fatalf("WriteString(%q): %v", s, err)
		}
		got, err := ReadString(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("ReadString(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestReadStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteVarInt(&buf, maxStringLen+1)
	if _, err := ReadString(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected error for over-long string length prefix")
	}
}
