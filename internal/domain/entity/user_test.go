package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_JSONOmitsPasswordHash(t *testing.T) {
	user := User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), user.PasswordHash)
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"email":"test@example.com"`)
}

func TestUser_Public(t *testing.T) {
	user := &User{ID: uuid.New(), Email: "test@example.com", Username: "testuser", PasswordHash: "hash"}

	assert.Equal(t, PublicUser{ID: user.ID.String(), Email: "test@example.com", Username: "testuser"}, user.Public())
}
