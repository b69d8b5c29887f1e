package files

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sc", "topup.zip"), []byte("zip"), 0o644))
	return NewSigner(dir, "test-secret", "https://store.example.com")
}

func tokenFrom(t *testing.T, signed string) string {
	t.Helper()
	u, err := url.Parse(signed)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestSignAndVerifyRoundtrip(t *testing.T) {
	s := newTestSigner(t)

	signed, err := s.Sign("sc/topup.zip", 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, "https://store.example.com/download?token="))

	path, err := s.Verify(tokenFrom(t, signed))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "sc", "topup.zip"), path)
}

func TestSignMissingFile(t *testing.T) {
	s := newTestSigner(t)
	_, err := s.Sign("sc/hilang.zip", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyExpiredToken(t *testing.T) {
	s := newTestSigner(t)
	signed, err := s.Sign("sc/topup.zip", -time.Minute)
	require.NoError(t, err)

	_, err = s.Verify(tokenFrom(t, signed))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTamperedToken(t *testing.T) {
	s := newTestSigner(t)
	signed, err := s.Sign("sc/topup.zip", time.Hour)
	require.NoError(t, err)

	other := NewSigner(s.Dir, "secret-lain", s.BaseURL)
	_, err = other.Verify(tokenFrom(t, signed))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignPathStaysInsideDir(t *testing.T) {
	s := newTestSigner(t)
	// path traversal dikurung ke dalam Dir -> tidak ketemu
	_, err := s.Sign("../../etc/passwd", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}
