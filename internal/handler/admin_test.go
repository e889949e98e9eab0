package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockprep/mockprep-go/internal/crypto"
	"github.com/mockprep/mockprep-go/internal/localstore"
	"github.com/mockprep/mockprep-go/internal/middleware"
	"github.com/mockprep/mockprep-go/internal/model"
	"github.com/mockprep/mockprep-go/internal/repository"
	"github.com/mockprep/mockprep-go/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hash, err := crypto.HashPassword("pw")
	require.NoError(t, err)

	admin := NewAdminHandler(service.NewAdminService(repository.NewLocal(localstore.NewMemory())), logger)
	auth := NewAuthHandler(service.NewAuthService("admin@example.com", hash, "secret", time.Hour), logger)

	r := chi.NewRouter()
	r.Get("/health", HandleHealth)
	r.Post("/api/admin/login", auth.HandleLogin)
	r.Route("/api/admin", admin.Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleLogin(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/admin/login", `{"email":"admin@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.AdminLoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)

	rec = do(t, h, http.MethodPost, "/api/admin/login", `{"email":"admin@example.com","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/admin/login", `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/admin/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestCategoryLifecycle(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/admin/categories", `{"name":"Design","description":"UX rounds"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var cat model.Category
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cat))
	require.NotEmpty(t, cat.ID)

	rec = do(t, h, http.MethodPost, "/api/admin/subcategories", `{"name":"Research","categoryId":"`+cat.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/admin/categories/"+cat.ID+"/subcategories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var subs []model.SubCategory
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&subs))
	require.Len(t, subs, 1)

	rec = do(t, h, http.MethodPut, "/api/admin/categories/"+cat.ID, `{"description":"Product design"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Category
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, "Design", updated.Name)
	assert.Equal(t, "Product design", updated.Description)

	rec = do(t, h, http.MethodDelete, "/api/admin/categories/"+cat.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/admin/categories/"+cat.ID+"/subcategories", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/admin/categories/"+cat.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateValidationAndNotFound(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/admin/interviews", `{"title":"Go","categoryId":"1","price":-3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"price must not be negative"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/admin/experts/missing", `{"bio":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"record not found"}`, rec.Body.String())
}

func TestBodyTooLarge(t *testing.T) {
	h := newTestRouter(t)
	big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	rec := do(t, h, http.MethodPost, "/api/admin/hrs", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMutationsLogActingAdmin(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	admin := NewAdminHandler(service.NewAdminService(repository.NewLocal(localstore.NewMemory())), logger)

	r := chi.NewRouter()
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.JWTAuth("secret"))
		admin.Routes(r)
	})

	token, _, err := crypto.GenerateToken("root@example.com", crypto.RoleAdmin, "secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(`{"name":"Design"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, buf.String(), "action=create")
	assert.Contains(t, buf.String(), "admin=root@example.com")
}
