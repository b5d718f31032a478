package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/AditRobertho/eshop-backend/internal/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindUserByEmail is the credential lookup used by login; it returns the
// stored digest alongside the profile.
func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, wrap("find user by email", err)
	}
	return &user, nil
}

func (r *GormRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, wrap("email exists", err)
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		return wrap("create user", err)
	}
	return nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, wrap("get user", err)
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

func (r *GormRepo) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, wrap("count users", err)
	}
	return total, nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return wrap("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete user", ErrNotFound)
	}
	return nil
}
