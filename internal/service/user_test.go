package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/repo"
	"github.com/elkhamyyali/ecommerceback/internal/testenv"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
)

func TestUserService_CreateUser(t *testing.T) {
	svc := &UserService{Repo: &repo.UserRepo{DB: testenv.DB(t)}}
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, transport.CreateUserRequest{Name: "Mona", Email: " Mona@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "mona@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, CheckPassword(u, "secret1"))
	assert.False(t, CheckPassword(u, "secret2"))

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.CreateUser(ctx, transport.CreateUserRequest{Name: "Mona", Email: "mona@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUserService_Validation(t *testing.T) {
	svc := &UserService{Repo: &repo.UserRepo{DB: testenv.DB(t)}}
	ctx := context.Background()

	cases := []transport.CreateUserRequest{
		{Email: "a@b.c", Password: "secret1"},
		{Name: "x", Email: "not-an-email", Password: "secret1"},
		{Name: "x", Email: "a@b.c", Password: "123"},
		{Name: "x", Email: "a@b.c", Password: "secret1", Role: "root"},
	}
	for i, req := range cases {
		_, err := svc.CreateUser(ctx, req)
		assert.ErrorIs(t, err, apperr.ErrValidation, "case %d", i)
	}

	_, err := svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
