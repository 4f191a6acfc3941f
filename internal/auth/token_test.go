package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	tok, err := m.Issue(42, "alice")
	require.NoError(t, err)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	tok, err := m.Issue(1, "alice")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}
