package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_GenerarYParsear(t *testing.T) {
	s, err := NewSigner("secreto", "authlog", 30)
	require.NoError(t, err)

	token, exp, err := s.Generate("u-1", "alice", []string{"Admin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.UserName)
	assert.True(t, claims.HasRole("Admin"))
	assert.False(t, claims.HasRole("admin"))
}

func TestSigner_SecretVacio(t *testing.T) {
	_, err := NewSigner("", "authlog", 30)
	assert.Error(t, err)
}

func TestSigner_FirmaDeOtroSecreto(t *testing.T) {
	a, _ := NewSigner("uno", "authlog", 30)
	b, _ := NewSigner("dos", "authlog", 30)
	token, _, err := a.Generate("u-1", "alice", nil)
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_TokenExpirado(t *testing.T) {
	s, _ := NewSigner("secreto", "authlog", 1)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := s.Generate("u-1", "alice", nil)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_OtroEmisor(t *testing.T) {
	a, _ := NewSigner("secreto", "otro", 30)
	b, _ := NewSigner("secreto", "authlog", 30)
	token, _, _ := a.Generate("u-1", "alice", nil)

	_, err := b.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
