package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/metrics"
	authmw "github.com/AditRobertho/eshop-backend/internal/middleware/auth"
	"github.com/AditRobertho/eshop-backend/internal/service"
	"github.com/AditRobertho/eshop-backend/internal/transport"
)

type UsersHTTP struct {
	Auth    *service.AuthService
	Users   *service.UserService
	Metrics *metrics.Metrics
}

var createUserMessages = messages{
	notFound: "the user cannot be created",
	conflict: "user already exists",
	storage:  http.StatusNotFound,
}

var userMessages = messages{notFound: "user not found"}

func (h *UsersHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrInvalidCredentials) {
			h.Metrics.ObserveLogin("denied")
		} else {
			h.Metrics.ObserveLogin("error")
		}
		return fail(l, "login_failed", err, messages{})
	}
	h.Metrics.ObserveLogin("success")
	l.Info("login_successful", "status", 200, "user_id", res.UserID, "is_admin", res.IsAdmin)

	c.SetCookie(authmw.CreateCookie(authmw.AccessCookie, res.AccessToken, "/", res.AccessExp))
	return c.JSON(http.StatusOK, echo.Map{"user": res.Email, "token": res.AccessToken})
}

func (h *UsersHTTP) Logout(c echo.Context) error {
	c.SetCookie(authmw.DeleteCookie(authmw.AccessCookie, "/"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out"})
}

func (h *UsersHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Auth.Register(ctx, req)
	if err != nil {
		return fail(l, "register_failed", err, createUserMessages)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_create", "admin_id", authmw.UserID(c))

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_failed", "status", 400, "reason", "bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.Create(ctx, req)
	if err != nil {
		return fail(l, "create_user_failed", err, createUserMessages)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_list")

	users, err := h.Users.List(ctx)
	if err != nil {
		return fail(l, "list_users_failed", err, userMessages)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_get")

	id, err := parseID(c, l, "get_user_failed", "user")
	if err != nil {
		return err
	}
	user, err := h.Users.Get(ctx, id)
	if err != nil {
		return fail(l, "get_user_failed", err, userMessages)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_count")

	n, err := h.Users.Count(ctx)
	if err != nil {
		return fail(l, "count_users_failed", err, userMessages)
	}
	return c.JSON(http.StatusOK, echo.Map{"userCount": n})
}

func (h *UsersHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_delete")

	id, err := parseID(c, l, "delete_user_failed", "user")
	if err != nil {
		return err
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(l, "delete_user_failed", err, userMessages)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "the user is deleted"})
}
