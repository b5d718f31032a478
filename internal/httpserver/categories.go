package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/service"
	"github.com/AditRobertho/eshop-backend/internal/transport"
)

type CategoriesHTTP struct {
	Svc *service.CategoryService
}

var categoryMessages = messages{
	notFound: "category not found",
	conflict: "category is still used by products",
}

func (h *CategoriesHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_list")

	cats, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_categories_failed", err, categoryMessages)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoriesHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_get")

	id, err := parseID(c, l, "get_category_failed", "category")
	if err != nil {
		return err
	}
	cat, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_category_failed", err, categoryMessages)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoriesHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_create")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_category_failed", "status", 400, "reason", "bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_category_failed", err, messages{notFound: "the category cannot be created", storage: http.StatusNotFound})
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoriesHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_update")

	id, err := parseID(c, l, "update_category_failed", "category")
	if err != nil {
		return err
	}
	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_category_failed", "status", 400, "reason", "bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	cat, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "update_category_failed", err, categoryMessages)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoriesHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_delete")

	id, err := parseID(c, l, "delete_category_failed", "category")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_category_failed", err, categoryMessages)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "the category is deleted"})
}
