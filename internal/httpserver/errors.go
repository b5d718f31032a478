package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/service"
)

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorHandler renders every error as {"success": false, "message": ...}.
// Anything that is not an *echo.HTTPError becomes an opaque 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = fmt.Sprint(m)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, errorBody{Success: false, Message: msg})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}

// messages overrides the client-facing text for the not-found and conflict
// cases; validation errors always carry their own message.
type messages struct {
	notFound string
	conflict string
	storage  int
}

// fail logs a service error under event and maps it to an HTTP error.
func fail(l *slog.Logger, event string, err error, m messages) error {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidCredentials):
		l.Warn(event, "status", 400, "reason", err.Error())
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not_found")
		return echo.NewHTTPError(http.StatusNotFound, orDefault(m.notFound, "not found"))
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, orDefault(m.conflict, "conflict"))
	case m.storage != 0 && errors.Is(err, service.ErrStorage):
		l.Error(event, "status", m.storage, "reason", "db_error", "error", err)
		return echo.NewHTTPError(m.storage, orDefault(m.notFound, "not found"))
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func parseID(c echo.Context, l *slog.Logger, event, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn(event, "status", 400, "reason", "bad_id")
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return id, nil
}

// baseURL is scheme://host of the incoming request; uploaded image URLs are
// built on top of it.
func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
