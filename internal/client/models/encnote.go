package models

import "time"

// EncryptedNote is the persisted form of an encrypted note. Title and body are
// encrypted independently, each under its own IV.
type EncryptedNote struct {
	ID          string
	Owner       string
	TitleCipher []byte
	BodyCipher  []byte
	IVTitle     []byte
	IVBody      []byte
	CreatedAt   time.Time
}

// DecryptedNote is an EncryptedNote together with its recovered plaintext.
// It only ever lives in memory.
type DecryptedNote struct {
	EncryptedNote
	Title string
	Body  string
}
