package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *Service {
	return NewService(NewMemoryUserRepository(), bcrypt.MinCost)
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Create(ctx, " root ", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "root", u.Username)
	require.NotEqual(t, "s3cret", u.PasswordHash)
	require.False(t, u.ID.IsZero())
	require.False(t, u.CreatedAt.IsZero())

	got, err := svc.Authenticate(ctx, "root", "s3cret")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "root", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Create(ctx, "root", "other")
	require.ErrorIs(t, err, ErrDuplicateUsername)
	_, err = svc.Create(ctx, "", "x")
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestUpdateKeepsPasswordWhenBlank(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u, err := svc.Create(ctx, "root", "first")
	require.NoError(t, err)

	_, err = svc.Update(ctx, u.ID.Hex(), "admin", "")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "admin", "first")
	require.NoError(t, err)

	_, err = svc.Update(ctx, u.ID.Hex(), "", "second")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "admin", "first")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "admin", "second")
	require.NoError(t, err)

	_, err = svc.Update(ctx, "bad", "x", "")
	require.ErrorIs(t, err, ErrInvalidID)
	_, err = svc.Update(ctx, primitive.NewObjectID().Hex(), "x", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	b, err := svc.Create(ctx, "bob", "pw")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "pw")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "alice", list[0].Username)

	require.NoError(t, svc.Delete(ctx, b.ID.Hex()))
	require.ErrorIs(t, svc.Delete(ctx, b.ID.Hex()), ErrNotFound)
	_, err = svc.Get(ctx, b.ID.Hex())
	require.ErrorIs(t, err, ErrNotFound)
}
