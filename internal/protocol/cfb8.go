package protocol

import "crypto/cipher"

// cfb8 implements AES/CFB8 (8-bit feedback), the symmetric mode vanilla
// Minecraft uses once encryption is enabled. The standard library's
// crypto/cipher only provides the 128-bit-feedback CFB variant
// (NewCFBEncrypter/Decrypter), so this is hand-rolled — no library in the
// retrieval pack implements CFB8 either; Go Minecraft client libraries in the
// ecosystem (e.g. Tnze/go-mc) carry the same kind of small custom
// implementation for the same reason.
type cfb8 struct {
	block     cipher.Block
	iv        []byte // rolling shift register, len == block.BlockSize()
	decrypt   bool
	blockSize int
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8 {
	bs := block.BlockSize()
	shift := make([]byte, bs)
	copy(shift, iv)
	return &cfb8{block: block, iv: shift, decrypt: decrypt, blockSize: bs}
}

// XORKeyStream encrypts or decrypts src into dst, one byte of ciphertext
// feedback at a time. dst and src may overlap exactly.
func (c *cfb8) XORKeyStream(dst, src []byte) {
	tmp := make([]byte, c.blockSize)
	for i := range src {
		c.block.Encrypt(tmp, c.iv)

		var cipherByte byte
		if c.decrypt {
			cipherByte = src[i]
			dst[i] = src[i] ^ tmp[0]
		} else {
			dst[i] = src[i] ^ tmp[0]
			cipherByte = dst[i]
		}

		// Shift the register left by one byte and append the new
		// ciphertext byte — the feedback for the next keystream byte.
		copy(c.iv, c.iv[1:])
		c.iv[c.blockSize-1] = cipherByte
	}
}
