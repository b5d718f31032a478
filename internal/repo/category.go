package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AditRobertho/eshop-backend/internal/models"
)

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	items := make([]models.Category, 0)
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, wrap("list categories", err)
	}
	return items, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&cat).Error; err != nil {
		return nil, wrap("get category", err)
	}
	return &cat, nil
}

func (r *GormRepo) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrap("category exists", err)
	}
	return count > 0, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	if err := r.DB.WithContext(ctx).Create(cat).Error; err != nil {
		return wrap("create category", err)
	}
	return nil
}

func (r *GormRepo) UpdateCategory(ctx context.Context, id uuid.UUID, name, icon, color *string) (*models.Category, error) {
	cat, err := r.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		cat.Name = *name
	}
	if icon != nil {
		cat.Icon = *icon
	}
	if color != nil {
		cat.Color = *color
	}

	if err := r.DB.WithContext(ctx).Save(cat).Error; err != nil {
		return nil, wrap("update category", err)
	}
	return cat, nil
}

// DeleteCategory returns ErrConflict while products still reference the category.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return ErrConflict
		}

		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return wrap("delete category", err)
}
