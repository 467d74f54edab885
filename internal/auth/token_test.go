package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), userID)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	other := NewTokenIssuer("another-secret")

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	_, err := issuer.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	issuer.ttl = -1

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
