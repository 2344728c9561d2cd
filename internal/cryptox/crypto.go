// Package cryptox holds the client-side cryptographic primitives: random
// bytes for salts and IVs, the salted password digest used to verify logins,
// PBKDF2 key derivation, and the AES-CBC field cipher used for encrypted notes.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the per-account salt in bytes.
	SaltSize = 12
	// KeySize is the length of the derived AES-256 key in bytes.
	KeySize = 32
	// IVSize is the CBC initialization vector length (one AES block).
	IVSize = 16
	// DefaultIterations is the PBKDF2 iteration count used for every account.
	DefaultIterations = 1000
)

var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrDecryptionFailed  = errors.New("decryption failed")
)

// RandomBytes reads n bytes from r. Pass rand.Reader (or nil, which means the
// same) in production; tests may substitute a deterministic reader.
func RandomBytes(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidParameters
	}
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// HashPassword returns SHA-256(salt || password).
//
// The digest only verifies logins; it is never used as the encryption key.
func HashPassword(password, salt []byte) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write(password)
	return h.Sum(nil)
}

// VerifyPassword recomputes the digest and compares it in constant time.
func VerifyPassword(password, salt, want []byte) bool {
	got := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// DeriveKey derives a keyLen-byte key from password and salt with
// PBKDF2-HMAC-SHA256. The output depends only on its arguments, so the same
// password and salt regenerate the same key in every session.
//
// Example:
//
//	key, err := cryptox.DeriveKey([]byte("pw"), salt, cryptox.DefaultIterations, cryptox.KeySize)
//	if err != nil {
//	    return err
//	}
//	defer common.WipeByteArray(key)
func DeriveKey(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if iterations <= 0 || keyLen <= 0 {
		return nil, fmt.Errorf("%w: iterations=%d keyLen=%d", ErrInvalidParameters, iterations, keyLen)
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New), nil
}
