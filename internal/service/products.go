package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/models"
	"github.com/AditRobertho/eshop-backend/internal/mykafka"
	"github.com/AditRobertho/eshop-backend/internal/repo"
	"github.com/AditRobertho/eshop-backend/internal/storage"
	"github.com/AditRobertho/eshop-backend/internal/transport"
	"github.com/AditRobertho/eshop-backend/internal/util"
)

const maxCountInStock = 255

type ProductService struct {
	Repo   *repo.GormRepo
	Images storage.Store
	// Index is optional; without it search runs against the database.
	Index  ProductIndex
	Events EventPublisher
}

// ParseCategoryFilter splits "a,b,c" into category ids. Blank input means no filter.
func ParseCategoryFilter(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, invalid("invalid category id")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *ProductService) List(ctx context.Context, categories string) ([]models.Product, error) {
	ids, err := ParseCategoryFilter(categories)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListProducts(ctx, ids)
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.Repo.CountProducts(ctx)
}

// Featured returns up to count featured products; 0 means all of them.
func (s *ProductService) Featured(ctx context.Context, count int) ([]models.Product, error) {
	if count < 0 {
		return nil, invalid("count must not be negative")
	}
	return s.Repo.FeaturedProducts(ctx, count)
}

func (s *ProductService) requireCategory(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalid("invalid category")
	}
	ok, err := s.Repo.CategoryExists(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, invalid("invalid category")
	}
	return id, nil
}

// storeImage returns the public URL of the stored image and the object name
// it was stored under.
func (s *ProductService) storeImage(ctx context.Context, up transport.Upload, baseURL string) (string, string, error) {
	ext, err := storage.Extension(up.ContentType)
	if err != nil {
		return "", "", invalid("invalid image type")
	}
	name := storage.FileName(up.Filename, ext)
	loc, err := s.Images.Put(ctx, name, up.ContentType, up.Body)
	if err != nil {
		return "", "", fmt.Errorf("store image: %w", err)
	}
	return storage.Resolve(baseURL, loc), name, nil
}

// discardImages removes objects whose database write never happened.
func (s *ProductService) discardImages(ctx context.Context, l *slog.Logger, names []string) {
	for _, name := range names {
		if err := s.Images.Delete(ctx, name); err != nil {
			l.Warn("image_cleanup_failed", "name", name, "error", err)
		}
	}
}

func validateNumbers(price *float64, stock *int, rating *float64, reviews *int) error {
	if price != nil && *price < 0 {
		return invalid("price cannot be negative")
	}
	if stock != nil && (*stock < 0 || *stock > maxCountInStock) {
		return invalid("countInStock must be between 0 and 255")
	}
	if rating != nil && *rating < 0 {
		return invalid("rating cannot be negative")
	}
	if reviews != nil && *reviews < 0 {
		return invalid("numReviews cannot be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, form transport.CreateProductForm, image *transport.Upload, baseURL string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "products.create")

	if strings.TrimSpace(form.Name) == "" {
		return nil, invalid("name is required")
	}
	if strings.TrimSpace(form.Description) == "" {
		return nil, invalid("description is required")
	}
	if err := validateNumbers(&form.Price, &form.CountInStock, &form.Rating, &form.NumReviews); err != nil {
		return nil, err
	}
	categoryID, err := s.requireCategory(ctx, form.Category)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, invalid("no image in the request")
	}

	url, name, err := s.storeImage(ctx, *image, baseURL)
	if err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:            strings.TrimSpace(form.Name),
		Description:     form.Description,
		RichDescription: form.RichDescription,
		Image:           url,
		Brand:           form.Brand,
		Price:           form.Price,
		CategoryID:      categoryID,
		CountInStock:    form.CountInStock,
		Rating:          form.Rating,
		NumReviews:      form.NumReviews,
		IsFeatured:      form.IsFeatured,
	})
	if err != nil {
		s.discardImages(ctx, l, []string{name})
		return nil, err
	}

	s.afterWrite(ctx, l, "product_created", created)
	return created, nil
}

func (s *ProductService) Patch(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "products.patch")

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, invalid("name cannot be empty")
	}
	if err := validateNumbers(req.Price, req.CountInStock, req.Rating, req.NumReviews); err != nil {
		return nil, err
	}
	if req.Category != nil {
		categoryID, err := s.requireCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		req.CategoryID = &categoryID
	}

	updated, err := s.Repo.PatchProduct(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, l, "product_updated", updated)
	return updated, nil
}

// UploadGallery replaces the product's gallery with the given images.
func (s *ProductService) UploadGallery(ctx context.Context, id uuid.UUID, uploads []transport.Upload, baseURL string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "products.gallery")

	if len(uploads) == 0 {
		return nil, invalid("no images in the request")
	}
	if len(uploads) > storage.MaxGalleryImages {
		return nil, invalid("too many images, at most 10 allowed")
	}
	for _, up := range uploads {
		if _, err := storage.Extension(up.ContentType); err != nil {
			return nil, invalid("invalid image type")
		}
	}
	if _, err := s.Repo.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(uploads))
	names := make([]string, 0, len(uploads))
	for _, up := range uploads {
		url, name, err := s.storeImage(ctx, up, baseURL)
		if err != nil {
			s.discardImages(ctx, l, names)
			return nil, err
		}
		urls = append(urls, url)
		names = append(names, name)
	}

	updated, err := s.Repo.SetProductImages(ctx, id, urls)
	if err != nil {
		s.discardImages(ctx, l, names)
		return nil, err
	}

	s.afterWrite(ctx, l, "product_gallery_updated", updated)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "products.delete")

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id.String()); err != nil {
			l.Warn("search_index_failed", "product_id", id.String(), "error", err)
		}
	}
	publish(ctx, l, s.Events, mykafka.TopicProductEvents, id.String(), map[string]any{
		"type":      "product_deleted",
		"productID": id.String(),
	})
	return nil
}

func (s *ProductService) Search(ctx context.Context, query string, page, size int) (*transport.SearchResult[models.Product], error) {
	l := logging.FromContext(ctx).With("svc", "products.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("missing search query")
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return &transport.SearchResult[models.Product]{Total: total, Items: items}, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	return &transport.SearchResult[models.Product]{Total: total, Items: items}, nil
}

func (s *ProductService) afterWrite(ctx context.Context, l *slog.Logger, eventType string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, *p); err != nil {
			l.Warn("search_index_failed", "product_id", p.ID.String(), "error", err)
		}
	}
	publish(ctx, l, s.Events, mykafka.TopicProductEvents, p.ID.String(), map[string]any{
		"type":      eventType,
		"productID": p.ID.String(),
		"name":      p.Name,
	})
}
