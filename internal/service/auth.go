package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	"github.com/AditRobertho/eshop-backend/internal/hash"
	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/models"
	"github.com/AditRobertho/eshop-backend/internal/mykafka"
	"github.com/AditRobertho/eshop-backend/internal/repo"
	"github.com/AditRobertho/eshop-backend/internal/tokens"
	"github.com/AditRobertho/eshop-backend/internal/transport"
)

const minPasswordLen = 6

type AuthService struct {
	Repo   *repo.GormRepo
	Hasher *hash.Hasher
	Issuer *tokens.Issuer
	Events EventPublisher

	dummyOnce   sync.Once
	dummyDigest string
}

// decoy returns a digest no password matches. Login compares against it when
// the email is unknown so both failure paths cost one bcrypt comparison.
func (s *AuthService) decoy() string {
	s.dummyOnce.Do(func() {
		d, err := s.Hasher.Hash("decoy-password-never-issued")
		if err == nil {
			s.dummyDigest = d
		}
	})
	return s.dummyDigest
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		l.Warn("login_failed", "status", 400, "reason", "missing email or password")
		return nil, invalid("email and password are required")
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Hasher.Verify(password, s.decoy())
			l.Warn("login_failed", "status", 400, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "reason", "cannot load user", "error", err)
		return nil, err
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		l.Warn("login_failed", "status", 400, "reason", "wrong password", "user_id", user.ID.String())
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Issuer.Issue(user.ID.String(), user.IsAdmin)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	publish(ctx, l, s.Events, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID.String(),
	})

	return &transport.LoginResult{
		UserID:      user.ID.String(),
		Email:       user.Email,
		IsAdmin:     user.IsAdmin,
		AccessToken: token,
		AccessExp:   exp,
	}, nil
}

// Register creates a standard account. A requested admin flag is ignored.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	user, err := createUser(ctx, s.Repo, s.Hasher, req, false)
	if err != nil {
		logCreateUserError(l, err)
		return nil, err
	}

	publish(ctx, l, s.Events, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":   "user_registered",
		"userID": user.ID.String(),
		"email":  user.Email,
	})
	l.Info("register_successful", "user_id", user.ID.String())
	return user, nil
}

func validateUser(req transport.RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalid("name is required")
	}
	email := strings.TrimSpace(req.Email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email is invalid")
	}
	if len(req.Password) < minPasswordLen {
		return invalid("password must be at least 6 characters")
	}
	return nil
}

func createUser(ctx context.Context, r *repo.GormRepo, h *hash.Hasher, req transport.RegisterRequest, isAdmin bool) (*models.User, error) {
	if err := validateUser(req); err != nil {
		return nil, err
	}

	exists, err := r.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	digest, err := h.Hash(req.Password)
	if err != nil {
		if hash.IsTooLong(err) {
			return nil, invalid("password is too long")
		}
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: digest,
		Phone:        req.Phone,
		IsAdmin:      isAdmin,
		Street:       req.Street,
		Apartment:    req.Apartment,
		Zip:          req.Zip,
		City:         req.City,
		Country:      req.Country,
	}
	if err := r.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
