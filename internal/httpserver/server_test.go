package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AditRobertho/eshop-backend/internal/dbtest"
	"github.com/AditRobertho/eshop-backend/internal/hash"
	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/metrics"
	authmw "github.com/AditRobertho/eshop-backend/internal/middleware/auth"
	"github.com/AditRobertho/eshop-backend/internal/middleware/ratelimit"
	"github.com/AditRobertho/eshop-backend/internal/mykafka"
	"github.com/AditRobertho/eshop-backend/internal/repo"
	"github.com/AditRobertho/eshop-backend/internal/service"
	"github.com/AditRobertho/eshop-backend/internal/storage"
	"github.com/AditRobertho/eshop-backend/internal/tokens"
	"github.com/AditRobertho/eshop-backend/internal/transport"
)

var testSecret = []byte("http-test-secret")

type testServer struct {
	e       *echo.Echo
	users   *service.UserService
	metrics *metrics.Metrics
	reg     *prometheus.Registry
	logs    *logBuffer
}

// logBuffer collects JSON log lines from concurrent handlers.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// lines returns every logged record whose msg equals msg.
func (b *logBuffer) lines(t *testing.T, msg string) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for _, line := range bytes.Split(b.buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		if rec["msg"] == msg {
			out = append(out, rec)
		}
	}
	return out
}

func newTestServer(t *testing.T, limit ratelimit.Config) *testServer {
	t.Helper()

	gdb := dbtest.New(t)
	r := &repo.GormRepo{DB: gdb}
	h := hash.New(bcrypt.MinCost)
	iss, err := tokens.NewIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	val, err := tokens.NewValidator(testSecret)
	require.NoError(t, err)
	images, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	events := mykafka.Nop{}
	users := &service.UserService{Repo: r, Hasher: h, Events: events}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logs := &logBuffer{}
	log := logging.NewWithWriter(logs, "info")

	e := New(log, m)
	Register(e, &Deps{
		DB:   gdb,
		Gate: &authmw.Gate{Validator: val},
		Users: &UsersHTTP{
			Auth:    &service.AuthService{Repo: r, Hasher: h, Issuer: iss, Events: events},
			Users:   users,
			Metrics: m,
		},
		Categories: &CategoriesHTTP{Svc: &service.CategoryService{Repo: r, Events: events}},
		Products:   &ProductsHTTP{Svc: &service.ProductService{Repo: r, Images: images, Events: events}},
		LoginLimit: limit,
		Gatherer:   reg,
	})
	return &testServer{e: e, users: users, metrics: m, reg: reg, logs: logs}
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSONRequest(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, path, token, body, echo.MIMEApplicationJSON)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.doJSONRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		User  string `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	_, err := s.users.Create(context.Background(), transport.RegisterRequest{
		Name: "Root", Email: "root@x.com", Password: "rootpw1", IsAdmin: true,
	})
	require.NoError(t, err)
	return s.login(t, "root@x.com", "rootpw1")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type filePart struct {
	field, name, contentType string
	body                     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		hdr.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
