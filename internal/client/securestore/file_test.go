package securestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	tests := []string{
		"eyJhbGciOiJIUzI1NiJ9.short",
		"a",
		"token-with-unicode-✓",
	}
	for _, token := range tests {
		require.NoError(t, s.Put(token))
		got, err := s.Get()
		require.NoError(t, err)
		assert.Equal(t, token, got)
	}
}

func TestFileStore_EmptySlotIsNotAnError(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	got, err := s.Get()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_PutReplacesExistingValue(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put("first"))
	require.NoError(t, s.Put("second"))

	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Delete()) // nothing stored yet

	require.NoError(t, s.Put("tok"))
	require.NoError(t, s.Delete())
	require.NoError(t, s.Delete())

	got, err := s.Get()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Put("persisted"))

	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := s2.Get()
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}

func TestFileStore_TokenNotStoredInPlaintext(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	const token = "very-secret-bearer-token"
	require.NoError(t, s.Put(token))

	raw, err := os.ReadFile(filepath.Join(dir, slotFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), token)
}

func TestFileStore_TamperedSlotIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put("tok"))

	path := filepath.Join(dir, slotFileName)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = s.Get()
	require.ErrorIs(t, err, errCorruptSlot)
}

func TestMemStore_Contract(t *testing.T) {
	s := NewMemStore()

	got, err := s.Get()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Put("tok"))
	got, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	require.NoError(t, s.Delete())
	require.NoError(t, s.Delete())
	got, err = s.Get()
	require.NoError(t, err)
	assert.Empty(t, got)
}
