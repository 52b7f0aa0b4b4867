package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/atacado-catalog/api/controllers"
	"github.com/angelmondragon/atacado-catalog/api/middleware"
	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/internal/categories"
	pkgAuth "github.com/angelmondragon/atacado-catalog/pkg/auth"
	"github.com/angelmondragon/atacado-catalog/pkg/config"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
	"github.com/angelmondragon/atacado-catalog/pkg/types"
)

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubRateLimiter struct{}

func (stubRateLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	return true, 1, nil
}

type memoryIdempotency struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryIdempotency) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotency) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryIdempotency) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

type stubCatalog struct {
	role enums.Role
}

func (s *stubCatalog) ListCatalog(ctx context.Context, role enums.Role, input catalog.ListInput) (*types.Page[catalog.ItemDTO], error) {
	s.role = role
	return &types.Page[catalog.ItemDTO]{Items: []catalog.ItemDTO{}}, nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, role enums.Role, productID string) (*catalog.ProductDetailDTO, error) {
	s.role = role
	return &catalog.ProductDetailDTO{ItemDTO: catalog.ItemDTO{ID: productID}}, nil
}

func (s *stubCatalog) ListCategories(ctx context.Context) ([]catalog.CategoryDTO, error) {
	return []catalog.CategoryDTO{}, nil
}

type stubCategories struct {
	categories.Service
	mu      sync.Mutex
	creates int
}

func (s *stubCategories) CreateCategory(ctx context.Context, input categories.CreateCategoryInput) (*categories.CategoryDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	return &categories.CategoryDTO{ID: "c1", Name: input.Name}, nil
}

func (s *stubCategories) ReorderCategories(ctx context.Context, ids []string) ([]categories.CategoryDTO, error) {
	return []categories.CategoryDTO{}, nil
}

type fixture struct {
	handler    http.Handler
	catalog    *stubCatalog
	categories *stubCategories
	cfg        *config.Config
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := &config.Config{
		App:     config.AppConfig{Env: "test"},
		JWT:     config.JWTConfig{Secret: "secret", Issuer: "catalog", ExpirationMinutes: 15},
		Storage: config.StorageConfig{PublicPath: "/api/uploads", MaxUploadMB: 1},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	reg := prometheus.NewRegistry()

	cat := &stubCatalog{}
	cats := &stubCategories{}
	handler := NewRouter(cfg, logg, Dependencies{
		Sessions:       stubSessions{},
		RateLimiter:    stubRateLimiter{},
		Idempotency:    &memoryIdempotency{data: map[string]string{}},
		Readiness:      map[string]controllers.ReadinessCheck{"db": func(context.Context) error { return nil }},
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		UploadFiles: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("file:" + r.URL.Path))
		}),
		Catalog:    cat,
		Categories: cats,
	})
	return fixture{handler: handler, catalog: cat, categories: cats, cfg: cfg}
}

func (f fixture) token(t *testing.T, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(f.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   "u-" + strings.ToLower(role.String()),
		Username: strings.ToLower(role.String()),
		Role:     role,
		JTI:      "jti-" + role.String(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (f fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestCatalogIsPublicAndResolvesRole(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/catalog/products", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if f.catalog.role != enums.RoleGuest {
		t.Fatalf("expected GUEST got %s", f.catalog.role)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/products/p1", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, enums.RoleRepresentative))
	rec = f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if f.catalog.role != enums.RoleRepresentative {
		t.Fatalf("expected REPRESENTATIVE got %s", f.catalog.role)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/catalog/categories", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	if rec := f.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token got %d", rec.Code)
	}
}

func TestAdminRequiresAdminRole(t *testing.T) {
	f := newFixture(t)

	if rec := f.do(httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(`{"name":"Vestidos"}`))); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", rec.Code)
	}

	for _, role := range []enums.Role{enums.RoleSacoleira, enums.RoleRepresentative} {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(`{"name":"Vestidos"}`))
		req.Header.Set("Authorization", "Bearer "+f.token(t, role))
		if rec := f.do(req); rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 got %d", role, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(`{"name":"Vestidos"}`))
	req.Header.Set("Authorization", "Bearer "+f.token(t, enums.RoleAdmin))
	if rec := f.do(req); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminCreateReplaysIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, enums.RoleAdmin)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(`{"name":"Saias"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(middleware.IdempotencyHeader, "k-1")
		rec := f.do(req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d", i, rec.Code)
		}
		if i == 1 && rec.Header().Get("Idempotent-Replay") != "true" {
			t.Fatalf("expected replay on second attempt")
		}
	}
	if f.categories.creates != 1 {
		t.Fatalf("expected one create, got %d", f.categories.creates)
	}
}

func TestCategoryOrderRouteIsNotShadowedByID(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/categories/order", strings.NewReader(`{"ids":["c1"]}`))
	req.Header.Set("Authorization", "Bearer "+f.token(t, enums.RoleAdmin))
	if rec := f.do(req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOperationalRoutes(t *testing.T) {
	f := newFixture(t)

	if rec := f.do(httptest.NewRequest(http.MethodGet, "/health/live", nil)); rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", rec.Code)
	}
	if rec := f.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil)); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", rec.Code)
	}

	f.do(httptest.NewRequest(http.MethodGet, "/api/catalog/products", nil))
	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="GET",route="/api/catalog/products",status="200"}`) {
		t.Fatalf("expected catalog request in metrics output:\n%s", rec.Body.String())
	}

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/uploads/1-a.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "file:/api/uploads/1-a.png" {
		t.Fatalf("uploads: unexpected response %d %q", rec.Code, rec.Body.String())
	}
}
