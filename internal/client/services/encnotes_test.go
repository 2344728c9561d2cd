package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/noteskeeper/internal/client/backup"
	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/cryptox"
	"github.com/dmitrijs2005/noteskeeper/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestCreateAndList_RoundTrip(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.enc.now = stepClock(t0, time.Minute)

	s := env.register(t, "alice", "pw1")

	n, err := env.enc.Create(ctx, s, "  Title  ", "Body text\nline two ")
	require.NoError(t, err)
	_, err = uuid.Parse(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", n.Owner)
	assert.Equal(t, t0.Add(time.Minute), n.CreatedAt)
	assert.NotContains(t, string(n.TitleCipher), "Title")

	list, err := env.enc.List(ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Title", list[0].Title)
	assert.Equal(t, "Body text\nline two", list[0].Body)
	assert.Equal(t, n.ID, list[0].ID)
}

func TestCreate_ListedNewestFirst(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.enc.now = stepClock(t0, time.Second)
	s := env.register(t, "alice", "pw1")

	for _, title := range []string{"first", "second", "third"} {
		_, err := env.enc.Create(ctx, s, title, "")
		require.NoError(t, err)
	}

	list, err := env.enc.List(ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{list[0].Title, list[1].Title, list[2].Title})
	assert.Equal(t, PlaceholderEmpty, list[0].Body)
}

func TestCreate_EmptyRejected(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	s := env.register(t, "alice", "pw1")

	for _, in := range [][2]string{{"", ""}, {"   ", "\n\t"}} {
		n, err := env.enc.Create(ctx, s, in[0], in[1])
		require.ErrorIs(t, err, common.ErrEmptyNote)
		assert.Nil(t, n)
	}

	all, err := env.store.Repos.EncryptedNotes.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreate_FreshIVs(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	s := env.register(t, "alice", "pw1")

	seen := make(map[string]struct{})
	var ciphers [][]byte
	for i := 0; i < 50; i++ {
		n, err := env.enc.Create(ctx, s, "same", "same")
		require.NoError(t, err)
		require.Len(t, n.IVTitle, cryptox.IVSize)
		require.Len(t, n.IVBody, cryptox.IVSize)
		require.NotEqual(t, n.IVTitle, n.IVBody)

		for _, iv := range [][]byte{n.IVTitle, n.IVBody} {
			k := hex.EncodeToString(iv)
			_, dup := seen[k]
			require.False(t, dup, "iv reused: %s", k)
			seen[k] = struct{}{}
		}
		ciphers = append(ciphers, n.TitleCipher)
	}
	assert.NotEqual(t, ciphers[0], ciphers[1], "same plaintext must not give same ciphertext")
}

func TestNotLoggedIn(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	dead := env.register(t, "alice", "pw1")
	env.auth.Logout(ctx)

	for name, s := range map[string]*Session{"nil": nil, "destroyed": dead} {
		t.Run(name, func(t *testing.T) {
			_, err := env.enc.Create(ctx, s, "t", "b")
			require.ErrorIs(t, err, common.ErrNotLoggedIn)
			_, err = env.enc.Update(ctx, s, "id", "t", "b")
			require.ErrorIs(t, err, common.ErrNotLoggedIn)
			require.ErrorIs(t, env.enc.Delete(ctx, s, "id"), common.ErrNotLoggedIn)
			_, err = env.enc.List(ctx, s)
			require.ErrorIs(t, err, common.ErrNotLoggedIn)
			_, err = env.enc.DecryptAll(s, nil)
			require.ErrorIs(t, err, common.ErrNotLoggedIn)
			_, err = env.enc.Export(ctx, s)
			require.ErrorIs(t, err, common.ErrNotLoggedIn)
			_, err = env.enc.ExportOwned(s, nil)
			require.ErrorIs(t, err, common.ErrNotLoggedIn)
			_, err = env.enc.ImportRecords(ctx, s, []byte("[]"))
			require.ErrorIs(t, err, common.ErrNotLoggedIn)
		})
	}
}

func TestUpdate(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.enc.now = stepClock(t0, time.Hour)
	s := env.register(t, "alice", "pw1")

	orig, err := env.enc.Create(ctx, s, "old title", "old body")
	require.NoError(t, err)
	origIVs := [][]byte{orig.IVTitle, orig.IVBody}
	origCreated := orig.CreatedAt

	upd, err := env.enc.Update(ctx, s, orig.ID, "new title", "")
	require.NoError(t, err)
	assert.Equal(t, orig.ID, upd.ID)
	assert.Equal(t, "alice", upd.Owner)
	assert.True(t, upd.CreatedAt.After(origCreated))
	assert.NotContains(t, origIVs, upd.IVTitle)
	assert.NotContains(t, origIVs, upd.IVBody)

	list, err := env.enc.List(ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new title", list[0].Title)
	assert.Equal(t, PlaceholderEmpty, list[0].Body)

	_, err = env.enc.Update(ctx, s, orig.ID, " ", "")
	require.ErrorIs(t, err, common.ErrEmptyNote)

	_, err = env.enc.Update(ctx, s, uuid.NewString(), "x", "y")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestOwnershipIsolation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice", "pw-a")
	aliceNote, err := env.enc.Create(ctx, alice, "alice secret", "body")
	require.NoError(t, err)
	aliceKey := keyOf(t, alice)

	bob := env.register(t, "bob", "pw-b")
	_, err = env.enc.Create(ctx, bob, "bob note", "")
	require.NoError(t, err)

	list, err := env.enc.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob note", list[0].Title)

	all, err := env.store.Repos.EncryptedNotes.GetAll(ctx)
	require.NoError(t, err)
	dec, err := env.enc.DecryptAll(bob, all)
	require.NoError(t, err)
	require.Len(t, dec, 1, "DecryptAll must drop foreign records")

	_, err = env.enc.Update(ctx, bob, aliceNote.ID, "hijack", "")
	require.ErrorIs(t, err, common.ErrNotOwner)
	require.ErrorIs(t, env.enc.Delete(ctx, bob, aliceNote.ID), common.ErrNotOwner)

	stored, err := env.store.Repos.EncryptedNotes.GetByID(ctx, aliceNote.ID)
	require.NoError(t, err)
	assert.Equal(t, aliceNote.TitleCipher, stored.TitleCipher)

	title, err := cryptox.DecryptField(stored.TitleCipher, aliceKey, stored.IVTitle)
	require.NoError(t, err)
	assert.Equal(t, "alice secret", title)
}

func TestDelete(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	s := env.register(t, "alice", "pw1")

	n, err := env.enc.Create(ctx, s, "t", "b")
	require.NoError(t, err)

	require.NoError(t, env.enc.Delete(ctx, s, n.ID))
	require.ErrorIs(t, env.enc.Delete(ctx, s, n.ID), common.ErrNotFound)

	list, err := env.enc.List(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDecryptAll_PlaceholdersPerField(t *testing.T) {
	env := newEnv(t)
	s := env.register(t, "alice", "pw1")
	key := keyOf(t, s)

	iv := bytes.Repeat([]byte{7}, cryptox.IVSize)
	enc := func(p string) []byte {
		c, err := cryptox.EncryptField(p, key, iv)
		require.NoError(t, err)
		return c
	}

	good := models.EncryptedNote{ID: "good", Owner: "alice", TitleCipher: enc("hello"), BodyCipher: enc(""), IVTitle: iv, IVBody: iv, CreatedAt: t0}
	badTitle := models.EncryptedNote{ID: "bad-title", Owner: "alice", TitleCipher: []byte("garbage"), BodyCipher: enc("body ok"), IVTitle: iv, IVBody: iv, CreatedAt: t0.Add(time.Minute)}
	badBoth := models.EncryptedNote{ID: "bad-both", Owner: "alice", TitleCipher: nil, BodyCipher: enc("x")[:16], IVTitle: iv, IVBody: []byte("short"), CreatedAt: t0.Add(2 * time.Minute)}

	out, err := env.enc.DecryptAll(s, []models.EncryptedNote{good, badTitle, badBoth})
	require.NoError(t, err)
	require.Len(t, out, 3)

	byID := map[string]models.DecryptedNote{}
	for _, d := range out {
		byID[d.ID] = d
	}
	assert.Equal(t, "hello", byID["good"].Title)
	assert.Equal(t, PlaceholderEmpty, byID["good"].Body)
	assert.Equal(t, PlaceholderDecryptionFailed, byID["bad-title"].Title)
	assert.Equal(t, "body ok", byID["bad-title"].Body)
	assert.Equal(t, PlaceholderDecryptionFailed, byID["bad-both"].Title)
	assert.Equal(t, PlaceholderDecryptionFailed, byID["bad-both"].Body)
}

func TestDecryptAll_StableNewestFirst(t *testing.T) {
	env := newEnv(t)
	s := env.register(t, "alice", "pw1")

	mk := func(id string, at time.Time) models.EncryptedNote {
		return models.EncryptedNote{ID: id, Owner: "alice", CreatedAt: at}
	}
	in := []models.EncryptedNote{
		mk("a", t0),
		mk("b", t0.Add(time.Hour)),
		mk("c", t0),
		mk("d", t0.Add(time.Hour)),
		mk("e", t0.Add(-time.Hour)),
	}

	out, err := env.enc.DecryptAll(s, in)
	require.NoError(t, err)

	ids := make([]string, 0, len(out))
	for _, d := range out {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids)
}

func TestDecryptAll_WrongKeyNeverLeaksPlaintext(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	s := env.register(t, "alice", "pw1")
	n, err := env.enc.Create(ctx, s, "top secret title", "top secret body")
	require.NoError(t, err)

	// same username, different password and salt: a different key
	other := NewSession("alice", bytes.Repeat([]byte{0x5a}, cryptox.KeySize))
	t.Cleanup(other.Destroy)

	out, err := env.enc.DecryptAll(other, []models.EncryptedNote{*n})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEqual(t, "top secret title", out[0].Title)
	assert.NotEqual(t, "top secret body", out[0].Body)
}

func TestExport_OnlyOwnedCiphertext(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice", "pw-a")
	_, err := env.enc.Create(ctx, alice, "alice-plain-title", "alice-plain-body")
	require.NoError(t, err)
	bob := env.register(t, "bob", "pw-b")
	_, err = env.enc.Create(ctx, bob, "bob-plain", "")
	require.NoError(t, err)

	data, err := env.enc.Export(ctx, bob)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "bob-plain")

	var recs []backup.Record
	require.NoError(t, json.Unmarshal(data, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "bob", recs[0].Owner)

	all, err := env.store.Repos.EncryptedNotes.GetAll(ctx)
	require.NoError(t, err)
	data, err = env.enc.ExportOwned(bob, all)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &recs))
	assert.Len(t, recs, 1)
	assert.NotContains(t, string(data), "alice")
}

func TestExportImport_RestoresNotes(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.enc.now = stepClock(t0, time.Millisecond)
	s := env.register(t, "alice", "pw1")

	for _, title := range []string{"one", "two"} {
		_, err := env.enc.Create(ctx, s, title, "body "+title)
		require.NoError(t, err)
	}
	before, err := env.enc.List(ctx, s)
	require.NoError(t, err)

	data, err := env.enc.Export(ctx, s)
	require.NoError(t, err)

	for _, n := range before {
		require.NoError(t, env.enc.Delete(ctx, s, n.ID))
	}

	count, err := env.enc.ImportRecords(ctx, s, data)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	after, err := env.enc.List(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// importing again overwrites the same rows
	count, err = env.enc.ImportRecords(ctx, s, data)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	again, err := env.enc.List(ctx, s)
	require.NoError(t, err)
	assert.Len(t, again, 2)
}

func exportRecord(id, owner string) map[string]string {
	return map[string]string{
		"id":          id,
		"owner":       owner,
		"titleCipher": "AAAAAAAAAAAAAAAAAAAAAA==",
		"bodyCipher":  "AAAAAAAAAAAAAAAAAAAAAA==",
		"ivTitle":     "000102030405060708090a0b0c0d0e0f",
		"ivBody":      "000102030405060708090a0b0c0d0e0f",
		"createdAt":   "2024-01-01T00:00:00Z",
	}
}

func TestImport_FiltersByOwner(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	s := env.register(t, "alice", "pw1")

	data, err := json.Marshal([]any{
		exportRecord(uuid.NewString(), "alice"),
		exportRecord(uuid.NewString(), "mallory"),
		exportRecord(uuid.NewString(), "alice"),
		"junk",
	})
	require.NoError(t, err)

	count, err := env.enc.ImportRecords(ctx, s, data)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := env.store.Repos.EncryptedNotes.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, r := range all {
		assert.Equal(t, "alice", r.Owner)
	}
}

func TestImport_Errors(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	s := env.register(t, "alice", "pw1")

	foreignOnly, err := json.Marshal([]any{exportRecord(uuid.NewString(), "bob")})
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "object instead of array", data: `{"id": "x"}`, wantErr: common.ErrInvalidImportFormat},
		{name: "not json", data: `hello`, wantErr: common.ErrInvalidImportFormat},
		{name: "array of junk", data: `[1, 2, "x"]`, wantErr: common.ErrInvalidImportFormat},
		{name: "empty array", data: `[]`, wantErr: common.ErrNoMatchingRecords},
		{name: "only foreign records", data: string(foreignOnly), wantErr: common.ErrNoMatchingRecords},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := env.enc.ImportRecords(ctx, s, []byte(tt.data))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, n)
		})
	}
}

func TestImport_NeverOverwritesForeignRow(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	bob := env.register(t, "bob", "pw-b")
	bobNote, err := env.enc.Create(ctx, bob, "bob's", "")
	require.NoError(t, err)

	alice := env.register(t, "alice", "pw-a")
	data, err := json.Marshal([]any{exportRecord(bobNote.ID, "alice")})
	require.NoError(t, err)

	n, err := env.enc.ImportRecords(ctx, alice, data)
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := env.store.Repos.EncryptedNotes.GetByID(ctx, bobNote.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", stored.Owner)
	assert.Equal(t, bobNote.TitleCipher, stored.TitleCipher)
}

func TestImport_StorageErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewEncryptedNoteService(db, logging.Discard())
	s := NewSession("alice", bytes.Repeat([]byte{1}, cryptox.KeySize))
	t.Cleanup(s.Destroy)

	data, err := json.Marshal([]any{exportRecord(uuid.NewString(), "alice"), exportRecord(uuid.NewString(), "alice")})
	require.NoError(t, err)

	boom := errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO encrypted_notes`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO encrypted_notes`).WillReturnError(boom)
	mock.ExpectRollback()

	n, err := svc.ImportRecords(context.Background(), s, data)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConcurrentUpdates_SameID(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	s := env.register(t, "alice", "pw1")

	n, err := env.enc.Create(ctx, s, "v0", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.enc.Update(ctx, s, n.ID, "v"+strings.Repeat("x", i+1), "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := env.enc.List(ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, strings.HasPrefix(list[0].Title, "vx"))
	assert.Zero(t, env.enc.locks.len())
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "noteskeeper_alice_enc_export.json", ExportFileName("alice"))
	assert.Equal(t, "noteskeeper_a_b_.._c_enc_export.json", ExportFileName("a/b/../c"))
}
