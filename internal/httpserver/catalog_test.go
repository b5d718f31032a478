package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AditRobertho/eshop-backend/internal/middleware/ratelimit"
)

var png = []byte("\x89PNG\r\n\x1a\n")

func TestCategoriesCRUD(t *testing.T) {
	s := newTestServer(t, ratelimit.Config{})
	admin := s.adminToken(t)

	rec := s.doJSONRequest(t, http.MethodPost, "/api/v1/categories", admin, map[string]string{"name": "Phones", "icon": "phone", "color": "#111"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec)["id"].(string)

	rec = s.doJSONRequest(t, http.MethodPost, "/api/v1/categories", admin, map[string]string{"icon": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doJSONRequest(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.doJSONRequest(t, http.MethodPut, "/api/v1/categories/"+id, admin, map[string]string{"color": "#fff"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "Phones", updated["name"])
	assert.Equal(t, "#fff", updated["color"])

	assert.Equal(t, http.StatusBadRequest, s.doJSONRequest(t, http.MethodGet, "/api/v1/categories/xyz", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.doJSONRequest(t, http.MethodGet, "/api/v1/categories/"+uuid.NewString(), "", nil).Code)

	body, ct := multipartBody(t, map[string]string{"name": "Pixel", "description": "d", "category": id},
		filePart{field: "image", name: "pixel.png", contentType: "image/png", body: png})
	rec = s.do(t, http.MethodPost, "/api/v1/products", admin, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	productID := decode[map[string]any](t, rec)["id"].(string)

	rec = s.doJSONRequest(t, http.MethodDelete, "/api/v1/categories/"+id, admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"category is still used by products"}`, rec.Body.String())

	rec = s.doJSONRequest(t, http.MethodDelete, "/api/v1/products/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.doJSONRequest(t, http.MethodDelete, "/api/v1/categories/"+id, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"the category is deleted"}`, rec.Body.String())

	rec = s.doJSONRequest(t, http.MethodDelete, "/api/v1/categories/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"category not found"}`, rec.Body.String())
}

func createCategory(t *testing.T, s *testServer, admin, name string) string {
	t.Helper()
	rec := s.doJSONRequest(t, http.MethodPost, "/api/v1/categories", admin, map[string]string{"name": name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)["id"].(string)
}

func TestProducts(t *testing.T) {
	s := newTestServer(t, ratelimit.Config{})
	admin := s.adminToken(t)
	shoes := createCategory(t, s, admin, "shoes")
	boots := createCategory(t, s, admin, "boots")

	body, ct := multipartBody(t, map[string]string{
		"name": "Runner", "description": "fast", "price": "49.5", "category": shoes,
		"countInStock": "3", "isFeatured": "true",
	}, filePart{field: "image", name: "red shoe.png", contentType: "image/png", body: png})
	rec := s.do(t, http.MethodPost, "/api/v1/products", admin, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id := created["id"].(string)
	assert.True(t, strings.HasPrefix(created["image"].(string), "http://example.com/public/uploads/red-shoe-"), created["image"])
	assert.Equal(t, 49.5, created["price"])

	t.Run("create rejects", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"name": "X", "description": "d", "category": uuid.NewString()},
			filePart{field: "image", name: "a.png", contentType: "image/png", body: png})
		rec := s.do(t, http.MethodPost, "/api/v1/products", admin, body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"invalid category"}`, rec.Body.String())

		body, ct = multipartBody(t, map[string]string{"name": "X", "description": "d", "category": shoes})
		rec = s.do(t, http.MethodPost, "/api/v1/products", admin, body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"no image in the request"}`, rec.Body.String())

		body, ct = multipartBody(t, map[string]string{"name": "X", "description": "d", "category": shoes},
			filePart{field: "image", name: "a.gif", contentType: "image/gif", body: []byte("GIF89a")})
		rec = s.do(t, http.MethodPost, "/api/v1/products", admin, body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		body, ct = multipartBody(t, map[string]string{"name": "X", "description": "d", "category": shoes},
			filePart{field: "image", name: "a.png", contentType: "image/png", body: png})
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/v1/products", "", body, ct).Code)
	})

	rec = s.doJSONRequest(t, http.MethodGet, "/api/v1/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "shoes", got["category"].(map[string]any)["name"])

	rec = s.doJSONRequest(t, http.MethodGet, "/api/v1/products?categories="+boots, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))

	rec = s.doJSONRequest(t, http.MethodGet, "/api/v1/products?categories="+shoes+","+boots, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	assert.Equal(t, http.StatusBadRequest, s.doJSONRequest(t, http.MethodGet, "/api/v1/products?categories=nope", "", nil).Code)

	rec = s.doJSONRequest(t, http.MethodGet, "/api/v1/products/get/count", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"productCount":1}`, rec.Body.String())

	rec = s.doJSONRequest(t, http.MethodGet, "/api/v1/products/get/featured/0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	assert.Equal(t, http.StatusBadRequest, s.doJSONRequest(t, http.MethodGet, "/api/v1/products/get/featured/abc", "", nil).Code)

	rec = s.doJSONRequest(t, http.MethodGet, "/api/v1/products/search?q=runn", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["total"])
	assert.Equal(t, http.StatusBadRequest, s.doJSONRequest(t, http.MethodGet, "/api/v1/products/search", "", nil).Code)

	rec = s.doJSONRequest(t, http.MethodPut, "/api/v1/products/"+id, admin, map[string]any{"price": 10, "category": boots})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[map[string]any](t, rec)
	assert.EqualValues(t, 10, patched["price"])
	assert.Equal(t, "boots", patched["category"].(map[string]any)["name"])

	rec = s.doJSONRequest(t, http.MethodPut, "/api/v1/products/"+id, admin, map[string]any{"category": uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, nil,
		filePart{field: "images", name: "a.png", contentType: "image/png", body: png},
		filePart{field: "images", name: "b.jpg", contentType: "image/jpeg", body: []byte{0xff, 0xd8}})
	rec = s.do(t, http.MethodPut, "/api/v1/products/gallery-images/"+id, admin, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[map[string]any](t, rec)["images"], 2)

	body, ct = multipartBody(t, nil)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/v1/products/gallery-images/"+id, admin, body, ct).Code)

	require.Equal(t, http.StatusOK, s.doJSONRequest(t, http.MethodDelete, "/api/v1/products/"+id, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.doJSONRequest(t, http.MethodGet, "/api/v1/products/"+id, "", nil).Code)
}
