package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("tester", "tester@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "tester", user.Name)
	assert.Equal(t, TIER_UNPAID, user.Tier)
	assert.Equal(t, STATUS_INACTIVE, user.Status)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, CheckPasswordHash("secret123", user.Password))
	assert.False(t, CheckPasswordHash("wrong", user.Password))
}

func TestCreateUserValidation(t *testing.T) {
	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@example.com", "secret123"},
		{"bad email", "tester", "not-an-email", "secret123"},
		{"short password", "tester", "a@example.com", "abc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateUser(tc.username, tc.email, tc.password)
			assert.Error(t, err)
		})
	}
}

func TestGenerateActivationToken(t *testing.T) {
	user, err := CreateUser("tester", "tester@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, user.GenerateActivationToken())
	assert.NotEmpty(t, user.ActivationToken)
	assert.NotNil(t, user.ActivationSentAt)

	first := user.ActivationToken
	require.NoError(t, user.GenerateActivationToken())
	assert.NotEqual(t, first, user.ActivationToken)
}

func TestUserTierHelpers(t *testing.T) {
	admin := &User{Tier: TIER_ADMIN, Status: STATUS_ACTIVE}
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsActive())

	paid := &User{Tier: TIER_PAID, Status: STATUS_DISABLED}
	assert.False(t, paid.IsAdmin())
	assert.False(t, paid.IsActive())
}

func TestSetPassword(t *testing.T) {
	user := &User{}
	require.NoError(t, user.SetPassword("newsecret"))
	assert.True(t, user.CheckPassword("newsecret"))
	assert.False(t, user.CheckPassword("oldsecret"))
}
