package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/models"
	"github.com/AditRobertho/eshop-backend/internal/mykafka"
	"github.com/AditRobertho/eshop-backend/internal/repo"
	"github.com/AditRobertho/eshop-backend/internal/transport"
)

type CategoryService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.Repo.GetCategory(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "categories.create")

	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, invalid("name is required")
	}
	cat := &models.Category{Name: strings.TrimSpace(*req.Name)}
	if req.Icon != nil {
		cat.Icon = *req.Icon
	}
	if req.Color != nil {
		cat.Color = *req.Color
	}

	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}

	publish(ctx, l, s.Events, mykafka.TopicCategoryEvents, cat.ID.String(), map[string]any{
		"type":       "category_created",
		"categoryID": cat.ID.String(),
		"name":       cat.Name,
	})
	return cat, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req transport.CategoryRequest) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "categories.update")

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, invalid("name cannot be empty")
	}

	cat, err := s.Repo.UpdateCategory(ctx, id, req.Name, req.Icon, req.Color)
	if err != nil {
		return nil, err
	}

	publish(ctx, l, s.Events, mykafka.TopicCategoryEvents, cat.ID.String(), map[string]any{
		"type":       "category_updated",
		"categoryID": cat.ID.String(),
		"name":       cat.Name,
	})
	return cat, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "categories.delete")

	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	publish(ctx, l, s.Events, mykafka.TopicCategoryEvents, id.String(), map[string]any{
		"type":       "category_deleted",
		"categoryID": id.String(),
	})
	return nil
}
