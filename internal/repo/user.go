package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
)

type UserRepo struct {
	DB *gorm.DB
}

// UserSummary is the subset of a user shown wherever the user is referenced.
type UserSummary struct {
	ID         uuid.UUID
	Name       string
	ProfileImg string
	Email      string
	Phone      string
}

func (r *UserRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		return apperr.Storage("insert user", err)
	}
	return nil
}

func (r *UserRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, apperr.Storage("get user", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, apperr.Storage("get user by email", err)
	}
	return &u, nil
}

func (r *UserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperr.Storage("check user", err)
	}
	return n > 0, nil
}

// Summaries fetches every requested user in one query. Unknown ids are absent from the map.
func (r *UserRepo) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]UserSummary, error) {
	out := make(map[uuid.UUID]UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []UserSummary
	if err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "name", "profile_img", "email", "phone").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Storage("load user summaries", err)
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}
