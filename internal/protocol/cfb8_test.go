package protocol

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"testing"
)

func TestCFB8RoundTrip(t *testing.T) {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}

	lengths := []int{0, 1, 15, 16, 17, 1000}
	for _, n := range lengths {
		plain := make([]byte, n)
		if _, err := rand.Read(plain); err != nil {
			t.Fatal(err)
		}

		encBlock, err := aes.NewCipher(key)
		if err != nil {
			t.Fatal(err)
		}
		decBlock, err := aes.NewCipher(key)
		if err != nil {
			t.Fatal(err)
		}

		enc := newCFB8(encBlock, key, false)
		dec := newCFB8(decBlock, key, true)

		ciphertext := make([]byte, n)
		enc.XORKeyStream(ciphertext, plain)

		recovered := make([]byte, n)
		dec.XORKeyStream(recovered, ciphertext)

		if !bytes.Equal(recovered, plain) {
			t.Fatalf("len=%d: round trip mismatch", n)
		}
	}
}

func TestCFB8PartialReadsMatchSinglePass(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 16)
	plain := []byte("the quick brown fox jumps over the lazy dog, repeatedly, to pad this out")

	block1, _ := aes.NewCipher(key)
	whole := newCFB8(block1, key, false)
	wholeOut := make([]byte, len(plain))
	whole.XORKeyStream(wholeOut, plain)

	block2, _ := aes.NewCipher(key)
	chunked := newCFB8(block2, key, false)
	chunkedOut := make([]byte, len(plain))
	for i := 0; i < len(plain); i += 7 {
		end := i + 7
		if end > len(plain) {
			end = len(plain)
		}
		chunked.XORKeyStream(chunkedOut[i:end], plain[i:end])
	}

	if !bytes.Equal(wholeOut, chunkedOut) {
		t.Fatal("chunked XORKeyStream calls diverged from a single whole-buffer call")
	}
}
