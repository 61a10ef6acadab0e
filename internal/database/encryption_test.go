package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-encryption-secret-0123456789abcdef"

func setupEncryptor(t *testing.T) *encryptor {
	t.Helper()
	t.Setenv("TGSENTRY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGSENTRY_ENCRYPTION_SECRET", testSecret)

	enc, err := NewEncryptor()
	require.NoError(t, err)
	return enc
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc := setupEncryptor(t)

	ciphertext, err := enc.Encrypt("sensitive message text")
	require.NoError(t, err)
	assert.NotEqual(t, "sensitive message text", ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "sensitive message text", plaintext)
}

func TestEncryptProducesDifferentCiphertexts(t *testing.T) {
	enc := setupEncryptor(t)

	first, err := enc.Encrypt("same input")
	require.NoError(t, err)
	second, err := enc.Encrypt("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "random nonces must vary the ciphertext")
}

func TestEncryptForLookupIsDeterministic(t *testing.T) {
	enc := setupEncryptor(t)

	first, err := enc.EncryptForLookup("conn-1")
	require.NoError(t, err)
	second, err := enc.EncryptForLookup("conn-1")
	require.NoError(t, err)

	assert.Equal(t, first, second, "lookup columns must stay searchable")
	assert.NotEqual(t, "conn-1", first)
}

func TestEncryptEmptyString(t *testing.T) {
	enc := setupEncryptor(t)

	ciphertext, err := enc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ciphertext)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	enc := setupEncryptor(t)

	_, err := enc.Decrypt("not base64!!!")
	assert.Error(t, err)

	_, err = enc.Decrypt("c2hvcnQ=")
	assert.ErrorContains(t, err, "too short")
}

func TestNewEncryptorRequiresSecret(t *testing.T) {
	t.Setenv("TGSENTRY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGSENTRY_ENCRYPTION_SECRET", "")

	_, err := NewEncryptor()
	assert.Error(t, err)
}

func TestNewEncryptorRejectsShortSecret(t *testing.T) {
	t.Setenv("TGSENTRY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGSENTRY_ENCRYPTION_SECRET", "too-short")

	_, err := NewEncryptor()
	assert.ErrorContains(t, err, "at least 32 characters")
}

func TestEncryptionDisabledPassthrough(t *testing.T) {
	t.Setenv("TGSENTRY_ENABLE_ENCRYPTION", "false")

	enc, err := NewEncryptor()
	require.NoError(t, err)

	out, err := enc.EncryptIfEnabled("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}

func TestDatabaseRoundTripWithEncryption(t *testing.T) {
	t.Setenv("TGSENTRY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGSENTRY_ENCRYPTION_SECRET", testSecret)

	db, err := New(filepath.Join(t.TempDir(), "enc.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	msg := sampleMessage(1)
	require.NoError(t, db.SaveMessage(ctx, msg))

	got, err := db.GetMessage(ctx, "conn-1", 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, msg.Text, got.Text)
	assert.Equal(t, msg.SenderName, got.SenderName)
	assert.Equal(t, msg.AttachmentPaths, got.AttachmentPaths)

	// The raw column must not contain the plaintext.
	var rawText string
	require.NoError(t, db.db.QueryRow(`SELECT text FROM messages WHERE msg_id = 1`).Scan(&rawText))
	assert.NotEqual(t, msg.Text, rawText)
}
