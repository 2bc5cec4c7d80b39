package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	a := New()

	hash, err := a.GenerateFromPassword("pw12345")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))
	require.NotContains(t, hash, "pw12345")

	ok, err := a.VerifyPasswd("pw12345", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.VerifyPasswd("wrong", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a := New()

	h1, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)
	h2, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a := New()

	_, err := a.VerifyPasswd("anything", "not-a-phc-hash")
	require.ErrorIs(t, err, ErrInvalidHash)
}
