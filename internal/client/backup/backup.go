// Package backup converts encrypted notes to and from the portable JSON
// export format. Only ciphertext, IVs and metadata are written; plaintext
// never appears in an export.
//
// A file is a JSON array of objects:
//
//	[
//	  {
//	    "id": "5b3c5b0e-6c1e-4e43-9e8f-1a2b3c4d5e6f",
//	    "owner": "alice",
//	    "titleCipher": "<std base64>",
//	    "bodyCipher": "<std base64>",
//	    "ivTitle": "<32 lowercase hex chars>",
//	    "ivBody": "<32 lowercase hex chars>",
//	    "createdAt": "2024-05-01T10:00:00.123456789Z"
//	  }
//	]
package backup

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/cryptox"
	"github.com/google/uuid"
)

// Record is the wire form of one encrypted note.
type Record struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	TitleCipher string `json:"titleCipher"`
	BodyCipher  string `json:"bodyCipher"`
	IVTitle     string `json:"ivTitle"`
	IVBody      string `json:"ivBody"`
	CreatedAt   string `json:"createdAt"`
}

// wireRecord uses pointers so a missing field can be told apart from an
// empty one.
type wireRecord struct {
	ID          *string `json:"id"`
	Owner       *string `json:"owner"`
	TitleCipher *string `json:"titleCipher"`
	BodyCipher  *string `json:"bodyCipher"`
	IVTitle     *string `json:"ivTitle"`
	IVBody      *string `json:"ivBody"`
	CreatedAt   *string `json:"createdAt"`
}

var errFieldMissing = errors.New("missing field")

// FromModel converts a stored note to its wire form.
func FromModel(n *models.EncryptedNote) Record {
	return Record{
		ID:          n.ID,
		Owner:       n.Owner,
		TitleCipher: base64.StdEncoding.EncodeToString(n.TitleCipher),
		BodyCipher:  base64.StdEncoding.EncodeToString(n.BodyCipher),
		IVTitle:     hex.EncodeToString(n.IVTitle),
		IVBody:      hex.EncodeToString(n.IVBody),
		CreatedAt:   n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Encode renders notes as an indented JSON array. A nil or empty slice
// encodes to "[]".
func Encode(notes []models.EncryptedNote) ([]byte, error) {
	out := make([]Record, 0, len(notes))
	for i := range notes {
		out = append(out, FromModel(&notes[i]))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Decode parses an export. The top-level value must be a JSON array, or
// common.ErrInvalidImportFormat is returned. Elements that are not valid
// records are skipped and counted in skipped; if the array is non-empty and
// every element was skipped the result is also ErrInvalidImportFormat.
func Decode(data []byte) (notes []models.EncryptedNote, skipped int, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, fmt.Errorf("%w: top-level value is not an array", common.ErrInvalidImportFormat)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", common.ErrInvalidImportFormat, err)
	}

	notes = make([]models.EncryptedNote, 0, len(raw))
	for _, elem := range raw {
		n, err := decodeRecord(elem)
		if err != nil {
			skipped++
			continue
		}
		notes = append(notes, *n)
	}

	if len(raw) > 0 && len(notes) == 0 {
		return nil, skipped, fmt.Errorf("%w: no valid records", common.ErrInvalidImportFormat)
	}
	return notes, skipped, nil
}

func decodeRecord(elem json.RawMessage) (*models.EncryptedNote, error) {
	e := bytes.TrimSpace(elem)
	if len(e) == 0 || e[0] != '{' {
		return nil, errors.New("element is not an object")
	}

	var w wireRecord
	if err := json.Unmarshal(e, &w); err != nil {
		return nil, err
	}
	if w.ID == nil || w.Owner == nil || w.TitleCipher == nil || w.BodyCipher == nil ||
		w.IVTitle == nil || w.IVBody == nil || w.CreatedAt == nil {
		return nil, errFieldMissing
	}

	id, err := uuid.Parse(*w.ID)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if *w.Owner == "" {
		return nil, errors.New("owner is empty")
	}

	titleCipher, err := decodeCipher(*w.TitleCipher)
	if err != nil {
		return nil, fmt.Errorf("titleCipher: %w", err)
	}
	bodyCipher, err := decodeCipher(*w.BodyCipher)
	if err != nil {
		return nil, fmt.Errorf("bodyCipher: %w", err)
	}
	ivTitle, err := decodeIV(*w.IVTitle)
	if err != nil {
		return nil, fmt.Errorf("ivTitle: %w", err)
	}
	ivBody, err := decodeIV(*w.IVBody)
	if err != nil {
		return nil, fmt.Errorf("ivBody: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, *w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}

	return &models.EncryptedNote{
		ID:          id.String(),
		Owner:       *w.Owner,
		TitleCipher: titleCipher,
		BodyCipher:  bodyCipher,
		IVTitle:     ivTitle,
		IVBody:      ivBody,
		CreatedAt:   createdAt.UTC(),
	}, nil
}

func decodeCipher(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 || len(b)%cryptox.IVSize != 0 {
		return nil, fmt.Errorf("length %d is not a positive multiple of the block size", len(b))
	}
	return b, nil
}

func decodeIV(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != cryptox.IVSize {
		return nil, fmt.Errorf("length %d, want %d", len(b), cryptox.IVSize)
	}
	return b, nil
}
