package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FormatConverter/internal/domain"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := tokens.Issue(ConvertAction)
	require.NoError(t, err)
	require.NoError(t, tokens.Verify(token, ConvertAction))

	other, err := tokens.Issue(ConvertAction)
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "each token carries a fresh nonce")
}

func TestTokensRejections(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.Issue(ConvertAction)
	require.NoError(t, err)

	foreign, err := NewTokens("other", time.Hour)
	require.NoError(t, err)

	cases := map[string]error{
		"empty":          tokens.Verify("", ConvertAction),
		"garbage":        tokens.Verify("not-a-token", ConvertAction),
		"wrong action":   tokens.Verify(token, "cache_clear"),
		"foreign secret": foreign.Verify(token, ConvertAction),
	}
	for name, err := range cases {
		assert.ErrorIs(t, err, domain.ErrAuth, name)
		assert.Equal(t, "Security check failed", domain.PublicMessage(err), name)
	}
}

func TestTokensExpire(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)

	issued := time.Now()
	tokens.now = func() time.Time { return issued }
	token, err := tokens.Issue(ConvertAction)
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }
	assert.ErrorIs(t, tokens.Verify(token, ConvertAction), domain.ErrAuth)
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	require.Error(t, err)
}

func TestAdminCheck(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	admin := NewAdmin("editor", hash)
	require.True(t, admin.Enabled())
	require.NoError(t, admin.Check("editor", "hunter2"))
	assert.ErrorIs(t, admin.Check("editor", "wrong"), domain.ErrAuth)
	assert.ErrorIs(t, admin.Check("someone", "hunter2"), domain.ErrAuth)

	disabled := NewAdmin("", "")
	assert.False(t, disabled.Enabled())
	assert.ErrorIs(t, disabled.Check("", ""), domain.ErrAuth)
}
