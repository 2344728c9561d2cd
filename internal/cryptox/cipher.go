package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"unicode/utf8"
)

// EncryptField encrypts a single text field with AES-256-CBC and PKCS#7
// padding. The key must be KeySize bytes and the IV IVSize bytes; any other
// length yields ErrInvalidParameters. An empty plaintext encrypts to one
// full block of padding.
//
// CBC carries no authentication tag: a modified ciphertext is only detected
// when it breaks the padding or the UTF-8 check in DecryptField.
func EncryptField(plaintext string, key, iv []byte) ([]byte, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return ciphertext, nil
}

// DecryptField reverses EncryptField. Every failure (bad key or IV length,
// ciphertext not a whole number of blocks, broken padding, non-UTF-8
// plaintext) is reported as ErrDecryptionFailed so callers can substitute a
// placeholder instead of aborting.
func DecryptField(ciphertext, key, iv []byte) (string, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d", ErrDecryptionFailed, len(ciphertext))
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok {
		return "", fmt.Errorf("%w: invalid padding", ErrDecryptionFailed)
	}
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrDecryptionFailed)
	}
	return string(plain), nil
}

func newBlock(key, iv []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidParameters, KeySize, len(key))
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidParameters, IVSize, len(iv))
	}
	return aes.NewCipher(key)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
