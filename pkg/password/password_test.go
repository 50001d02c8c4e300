package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPolicy_Validate(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name  string
		pw    string
		count int
	}{
		{"cumple", "Passw0rd", 0},
		{"corta", "Ab1", 1},
		{"sin dígito", "Password", 1},
		{"sin mayúscula", "passw0rd", 1},
		{"sin minúscula", "PASSW0RD", 1},
		{"vacía", "", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, p.Validate(tt.pw), tt.count)
		})
	}
}

func TestPolicy_NoAlfanumerico(t *testing.T) {
	p := DefaultPolicy()
	p.RequireNonAlphanumeric = true

	assert.Len(t, p.Validate("Passw0rd"), 1)
	assert.Empty(t, p.Validate("Passw0rd!"))
}

func TestHasher_HashYVerify(t *testing.T) {
	h := NewHasher(DefaultPolicy(), bcrypt.MinCost)

	hash, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", hash)

	ok, err := h.Verify(hash, "Passw0rd")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "otra")
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "cada hash lleva su propia sal")
}

func TestHasher_HashCorrupto(t *testing.T) {
	h := NewHasher(DefaultPolicy(), bcrypt.MinCost)
	_, err := h.Verify("no-es-bcrypt", "x")
	assert.Error(t, err)
}

func TestPolicy_TopeDeBytes(t *testing.T) {
	p := DefaultPolicy()

	assert.Empty(t, p.Validate("Aa1"+strings.Repeat("x", MaxBytes-3)), "72 bytes exactos")
	msgs := p.Validate("Aa1" + strings.Repeat("x", 80))
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "72 bytes")
	assert.Len(t, p.Validate("Aa1"+strings.Repeat("ñ", 35)), 1, "se cuentan bytes, no runas")
}

func TestHasher_ContrasenaLargaNoCoincide(t *testing.T) {
	h := NewHasher(DefaultPolicy(), bcrypt.MinCost)
	hash, err := h.Hash("Passw0rd")
	require.NoError(t, err)

	ok, err := h.Verify(hash, "Passw0rd"+strings.Repeat("x", 100))
	require.NoError(t, err)
	assert.False(t, ok)
}
