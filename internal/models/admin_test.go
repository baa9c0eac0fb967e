package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdminUser_JSONOmitsPassword(t *testing.T) {
	u := AdminUser{ID: primitive.NewObjectID(), Username: "root", PasswordHash: "$2a$12$secret"}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(b), "secret")
	require.NotContains(t, string(b), "password")
	require.Contains(t, string(b), `"username":"root"`)
	require.Equal(t, u.ID.Hex(), u.Subject())
}
