package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/hash"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/repo"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
)

type UserService struct {
	Repo *repo.UserRepo
}

func (s *UserService) CreateUser(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	name, email := req.Name, req.Email

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	_, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("E-mail already in use", nil)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:         name,
		Email:        email,
		Phone:        req.Phone,
		ProfileImg:   req.ProfileImg,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "There is no user with id "+id.String())
	}
	return u, nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(u *models.User, password string) bool {
	return hash.CheckPassword(u.PasswordHash, password)
}
