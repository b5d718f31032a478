package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/AditRobertho/eshop-backend/internal/hash"
	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/models"
	"github.com/AditRobertho/eshop-backend/internal/mykafka"
	"github.com/AditRobertho/eshop-backend/internal/repo"
	"github.com/AditRobertho/eshop-backend/internal/transport"
)

// UserService backs the admin user-management routes.
type UserService struct {
	Repo   *repo.GormRepo
	Hasher *hash.Hasher
	Events EventPublisher
}

func logCreateUserError(l *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		l.Warn("create_user_failed", "status", 400, "reason", err.Error())
	case errors.Is(err, ErrConflict):
		l.Warn("create_user_failed", "status", 409, "reason", "email already registered")
	default:
		l.Error("create_user_failed", "status", 500, "reason", "cannot store user", "error", err)
	}
}

func (s *UserService) Create(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	user, err := createUser(ctx, s.Repo, s.Hasher, req, req.IsAdmin)
	if err != nil {
		logCreateUserError(l, err)
		return nil, err
	}

	publish(ctx, l, s.Events, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_created",
		"userID":  user.ID.String(),
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
	})
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.Repo.GetUserByID(ctx, id)
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.Repo.CountUsers(ctx)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "users.delete")
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	publish(ctx, l, s.Events, mykafka.TopicUserEvents, id.String(), map[string]any{
		"type":   "user_deleted",
		"userID": id.String(),
	})
	return nil
}
