package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/AditRobertho/eshop-backend/internal/models"
	"github.com/AditRobertho/eshop-backend/internal/transport"
)

func (r *GormRepo) ListProducts(ctx context.Context, categoryIDs []uuid.UUID) ([]models.Product, error) {
	items := make([]models.Product, 0)
	q := r.DB.WithContext(ctx).Preload("Category").Order("date_created DESC")
	if len(categoryIDs) > 0 {
		q = q.Where("category_id IN ?", categoryIDs)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, wrap("list products", err)
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, wrap("get product", err)
	}
	return &product, nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, wrap("count products", err)
	}
	return total, nil
}

// FeaturedProducts returns featured products newest first; limit <= 0 means all.
func (r *GormRepo) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0)
	q := r.DB.WithContext(ctx).Where("is_featured = ?", true).Order("date_created DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, wrap("featured products", err)
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(prod).Error; err != nil {
		return nil, wrap("create product", err)
	}
	return r.GetProduct(ctx, prod.ID)
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, wrap("patch product", err)
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.RichDescription != nil {
		prod.RichDescription = *req.RichDescription
	}
	if req.Image != nil {
		prod.Image = *req.Image
	}
	if req.Brand != nil {
		prod.Brand = *req.Brand
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.CategoryID != nil {
		prod.CategoryID = *req.CategoryID
	}
	if req.CountInStock != nil {
		prod.CountInStock = *req.CountInStock
	}
	if req.Rating != nil {
		prod.Rating = *req.Rating
	}
	if req.NumReviews != nil {
		prod.NumReviews = *req.NumReviews
	}
	if req.IsFeatured != nil {
		prod.IsFeatured = *req.IsFeatured
	}

	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Save(&prod).Error; err != nil {
		return nil, wrap("patch product", err)
	}
	return r.GetProduct(ctx, id)
}

func (r *GormRepo) SetProductImages(ctx context.Context, id uuid.UUID, images []string) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, wrap("set product images", err)
	}
	prod.Images = images
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Save(&prod).Error; err != nil {
		return nil, wrap("set product images", err)
	}
	return r.GetProduct(ctx, id)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return wrap("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete product", ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchProducts is the relational fallback used when no search cluster is
// configured: a case-insensitive substring match on name and description.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	where := `LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where(where, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, wrap("search products", err)
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Preload("Category").
		Where(where, pattern, pattern).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, wrap("search products", err)
	}
	return total, items, nil
}
