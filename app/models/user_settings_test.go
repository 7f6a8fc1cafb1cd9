package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSettingsIssueAPIKey(t *testing.T) {
	us := &UserSettings{UserID: 1}

	key, err := us.IssueAPIKey()
	require.NoError(t, err)
	require.NotEmpty(t, key)

	assert.True(t, strings.HasPrefix(key, "mmt_"))
	assert.NotEmpty(t, us.APIKeyHash)
	assert.NotEmpty(t, us.APIKeyPrefix)
	assert.NotNil(t, us.APIKeyCreatedAt)
	assert.Nil(t, us.APIKeyLastUsedAt)
	assert.True(t, us.HasActiveAPIKey())
	assert.Equal(t, HashAPIKey(key), us.APIKeyHash)
}

func TestUserSettingsIssueAPIKeyRotates(t *testing.T) {
	us := &UserSettings{UserID: 1}

	first, err := us.IssueAPIKey()
	require.NoError(t, err)
	firstHash := us.APIKeyHash

	second, err := us.IssueAPIKey()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, firstHash, us.APIKeyHash)
	assert.Equal(t, HashAPIKey(second), us.APIKeyHash)
}

func TestUserSettingsRevokeAPIKey(t *testing.T) {
	us := &UserSettings{UserID: 99}
	_, err := us.IssueAPIKey()
	require.NoError(t, err)

	us.RevokeAPIKey()

	assert.False(t, us.HasActiveAPIKey())
	assert.Equal(t, "", us.APIKeyHash)
	assert.Equal(t, "", us.APIKeyPrefix)
	assert.NotNil(t, us.APIKeyRevokedAt)
}

func TestUserSettingsReissueAfterRevoke(t *testing.T) {
	us := &UserSettings{UserID: 7}
	_, err := us.IssueAPIKey()
	require.NoError(t, err)
	us.RevokeAPIKey()

	key, err := us.IssueAPIKey()
	require.NoError(t, err)

	assert.True(t, us.HasActiveAPIKey())
	assert.Nil(t, us.APIKeyRevokedAt)
	assert.Equal(t, HashAPIKey(key), us.APIKeyHash)
}

func TestHashAPIKeyTrimsWhitespace(t *testing.T) {
	assert.Equal(t, HashAPIKey("mmt_abc"), HashAPIKey("  mmt_abc \n"))
	assert.NotEqual(t, HashAPIKey("mmt_abc"), HashAPIKey("mmt_abd"))
}
