package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordService(t *testing.T) {
	service := NewPasswordService()
	assert.NotNil(t, service)
	assert.IsType(t, &passwordService{}, service)
}

func TestPasswordService_HashPassword(t *testing.T) {
	service := NewPasswordService()

	t.Run("Success_Argon2idPHC", func(t *testing.T) {
		hash, err := service.HashPassword("Adm1n!Passw0rd")
		require.NoError(t, err)

		assert.NotEqual(t, "Adm1n!Passw0rd", hash)
		assert.Contains(t, hash, "$argon2id$")
	})

	t.Run("Success_SaltedPerHash", func(t *testing.T) {
		first, err := service.HashPassword("same-password")
		require.NoError(t, err)
		second, err := service.HashPassword("same-password")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestPasswordService_VerifyPassword(t *testing.T) {
	service := NewPasswordService()
	hash, err := service.HashPassword("Adm1n!Passw0rd")
	require.NoError(t, err)

	tests := []struct {
		name      string
		candidate string
		hash      string
		expected  bool
	}{
		{name: "correct password", candidate: "Adm1n!Passw0rd", hash: hash, expected: true},
		{name: "wrong password", candidate: "adm1n!passw0rd", hash: hash, expected: false},
		{name: "empty password", candidate: "", hash: hash, expected: false},
		{name: "trailing space", candidate: "Adm1n!Passw0rd ", hash: hash, expected: false},
		{name: "malformed hash", candidate: "Adm1n!Passw0rd", hash: "not-a-phc-string", expected: false},
		{name: "empty hash", candidate: "Adm1n!Passw0rd", hash: "", expected: false},
		{name: "plaintext stored as hash", candidate: "Adm1n!Passw0rd", hash: "Adm1n!Passw0rd", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, service.VerifyPassword(tt.candidate, tt.hash))
		})
	}
}
