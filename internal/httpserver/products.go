package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/service"
	"github.com/AditRobertho/eshop-backend/internal/transport"
	"github.com/AditRobertho/eshop-backend/internal/util"
)

const maxImageBytes = 5 << 20

var errImageTooLarge = errors.New("image is too large")

type ProductsHTTP struct {
	Svc *service.ProductService
}

var productMessages = messages{notFound: "product not found"}

func readUpload(fh *multipart.FileHeader) (transport.Upload, error) {
	if fh.Size > maxImageBytes {
		return transport.Upload{}, errImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return transport.Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return transport.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if len(body) > maxImageBytes {
		return transport.Upload{}, errImageTooLarge
	}
	return transport.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        body,
	}, nil
}

func uploadError(l *slog.Logger, event string, err error) error {
	if errors.Is(err, errImageTooLarge) {
		l.Warn(event, "status", 400, "reason", "image_too_large")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l.Error(event, "status", 500, "reason", "read_upload", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func (h *ProductsHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_list")

	products, err := h.Svc.List(ctx, c.QueryParam("categories"))
	if err != nil {
		return fail(l, "list_products_failed", err, productMessages)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_get")

	id, err := parseID(c, l, "get_product_failed", "product")
	if err != nil {
		return err
	}
	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err, productMessages)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_count")

	n, err := h.Svc.Count(ctx)
	if err != nil {
		return fail(l, "count_products_failed", err, productMessages)
	}
	return c.JSON(http.StatusOK, echo.Map{"productCount": n})
}

func (h *ProductsHTTP) Featured(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_featured")

	count, err := strconv.Atoi(c.Param("count"))
	if err != nil {
		l.Warn("featured_products_failed", "status", 400, "reason", "bad_count")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid count")
	}
	products, err := h.Svc.Featured(ctx, count)
	if err != nil {
		return fail(l, "featured_products_failed", err, productMessages)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_products_failed", err, productMessages)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductsHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_create")

	var form transport.CreateProductForm
	if err := c.Bind(&form); err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var image *transport.Upload
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		up, err := readUpload(fh)
		if err != nil {
			return uploadError(l, "create_product_failed", err)
		}
		image = &up
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		l.Warn("create_product_failed", "status", 400, "reason", "bad_multipart", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.Create(ctx, form, image, baseURL(c))
	if err != nil {
		return fail(l, "create_product_failed", err, messages{notFound: "the product cannot be created", storage: http.StatusInternalServerError})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_update")

	id, err := parseID(c, l, "update_product_failed", "product")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	p, err := h.Svc.Patch(ctx, id, req)
	if err != nil {
		return fail(l, "update_product_failed", err, productMessages)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) UploadGallery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_gallery")

	id, err := parseID(c, l, "gallery_upload_failed", "product")
	if err != nil {
		return err
	}

	var uploads []transport.Upload
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["images"] {
			up, err := readUpload(fh)
			if err != nil {
				return uploadError(l, "gallery_upload_failed", err)
			}
			uploads = append(uploads, up)
		}
	}

	p, err := h.Svc.UploadGallery(ctx, id, uploads, baseURL(c))
	if err != nil {
		return fail(l, "gallery_upload_failed", err, productMessages)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products_delete")

	id, err := parseID(c, l, "delete_product_failed", "product")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_product_failed", err, productMessages)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "the product is deleted"})
}
