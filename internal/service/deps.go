package service

import (
	"context"
	"log/slog"

	"github.com/AditRobertho/eshop-backend/internal/models"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

// publish never fails the request; a lost event is logged and dropped.
func publish(ctx context.Context, l *slog.Logger, events EventPublisher, topic, key string, event map[string]any) {
	if events == nil {
		return
	}
	if err := events.PublishEvent(ctx, topic, key, event); err != nil {
		l.Warn("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
