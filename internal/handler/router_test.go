package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/recipebox/internal/middleware"
	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/recipe"
)

const (
	testCSRFToken = "router-test-csrf-token"
	testSessionID = "valid-session"
	testUserID    = "user-test-1"
)

// mockSessionFinderForRouter はRouterテスト用のSessionFinderモック。
type mockSessionFinderForRouter struct {
	sessions map[string]*model.Session
}

func (m *mockSessionFinderForRouter) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}

// mockHealthChecker はHealthCheckerのモック。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// mockHTTPRecorder はHTTPメトリクス記録のモック。
type mockHTTPRecorder struct {
	mu       sync.Mutex
	statuses []int
}

func (m *mockHTTPRecorder) RecordHTTPRequest(statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, statusCode)
}

// routerFixture はテスト用ルーターと差し替え可能なモックをまとめたもの。
type routerFixture struct {
	deps      *RouterDeps
	recipes   *mockRecipeService
	relations *mockRelationService
	users     *mockUserService
	metrics   *mockHTTPRecorder
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		recipes:   &mockRecipeService{},
		relations: &mockRelationService{},
		users:     &mockUserService{},
		metrics:   &mockHTTPRecorder{},
	}
	f.deps = &RouterDeps{
		SessionFinder: &mockSessionFinderForRouter{
			sessions: map[string]*model.Session{
				testSessionID: {ID: testSessionID, UserID: testUserID, ExpiresAt: time.Now().Add(time.Hour)},
			},
		},
		CORSAllowedOrigin:   "http://localhost:3000",
		CSRFConfig:          middleware.CSRFConfig{CookieSecure: false},
		RateLimiter:         middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
		MetricsRecorder:     f.metrics,
		HealthChecker:       &mockHealthChecker{},
		Pages:               testPages,
		CatalogService:      &mockCatalogService{},
		UserService:         f.users,
		SubscriptionService: &mockSubscriptionService{},
		RecipeService:       f.recipes,
		RelationService:     f.relations,
		ShoppingListService: &mockShoppingListService{},
	}
	return f
}

func (f *routerFixture) router(t *testing.T) http.Handler {
	t.Helper()
	t.Cleanup(f.deps.RateLimiter.Stop)
	return NewRouter(f.deps)
}

// newAPIRequest はセッションとCSRFトークンを任意で付与したリクエストを作る。
func newAPIRequest(method, path, body string, withSession, withCSRF bool) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if withSession {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: testSessionID})
	}
	if withCSRF {
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
		req.Header.Set("X-CSRF-Token", testCSRFToken)
	}
	return req
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{"DB正常", nil, http.StatusOK},
		{"DB停止", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture()
			f.deps.HealthChecker = &mockHealthChecker{err: tt.pingErr}
			r := f.router(t)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	f := newRouterFixture()
	f.deps.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	r := f.router(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK || w.Body.String() != "# metrics" {
		t.Errorf("unexpected metrics response: %d %q", w.Code, w.Body.String())
	}
}

func TestRouter_AnonymousRead_AppliesSecurityHeadersAndMetrics(t *testing.T) {
	f := newRouterFixture()
	var gotViewer = "unset"
	f.recipes.listFn = func(ctx context.Context, viewerID string, filter recipe.Filter, page model.PageRequest) ([]recipeResponse, int, error) {
		gotViewer = viewerID
		return nil, 0, nil
	}
	r := f.router(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAPIRequest(http.MethodGet, "/api/recipes", "", false, false))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotViewer != "" {
		t.Errorf("expected anonymous viewer, got %q", gotViewer)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on API responses")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("expected CORS header on API responses")
	}
	if len(f.metrics.statuses) != 1 || f.metrics.statuses[0] != http.StatusOK {
		t.Errorf("expected one recorded 200, got %v", f.metrics.statuses)
	}
}

func TestRouter_ViewerIsResolvedFromSession(t *testing.T) {
	f := newRouterFixture()
	var gotViewer string
	f.recipes.getFn = func(ctx context.Context, viewerID, recipeID string) (*recipeResponse, error) {
		gotViewer = viewerID
		return &recipeResponse{ID: recipeID}, nil
	}
	r := f.router(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAPIRequest(http.MethodGet, "/api/recipes/recipe-1", "", true, false))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotViewer != testUserID {
		t.Errorf("expected viewer %s, got %q", testUserID, gotViewer)
	}
}

func TestRouter_StateChangingRequests(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		withSession bool
		withCSRF    bool
		wantStatus  int
		wantCode    string
	}{
		{"CSRFトークンなし", http.MethodPost, "/api/recipes", `{}`, true, false, http.StatusForbidden, model.ErrCodeCSRFFailed},
		{"未認証でレシピ作成", http.MethodPost, "/api/recipes", `{}`, false, true, http.StatusUnauthorized, model.ErrCodeUnauthorized},
		{"レシピ作成", http.MethodPost, "/api/recipes", `{}`, true, true, http.StatusCreated, ""},
		{"レシピ更新", http.MethodPatch, "/api/recipes/recipe-1", `{}`, true, true, http.StatusOK, ""},
		{"レシピ削除", http.MethodDelete, "/api/recipes/recipe-1", "", true, true, http.StatusNoContent, ""},
		{"未認証でお気に入り", http.MethodPost, "/api/recipes/recipe-1/favorite", "", false, true, http.StatusUnauthorized, model.ErrCodeUnauthorized},
		{"お気に入り追加", http.MethodPost, "/api/recipes/recipe-1/favorite", "", true, true, http.StatusCreated, ""},
		{"買い物リスト削除", http.MethodDelete, "/api/recipes/recipe-1/shopping_cart", "", true, true, http.StatusNoContent, ""},
		{"フォロー", http.MethodPost, "/api/users/author-1/subscribe", "", true, true, http.StatusCreated, ""},
		{"匿名でユーザー登録", http.MethodPost, "/api/users", `{"email":"a@example.com"}`, false, true, http.StatusCreated, ""},
		{"退会", http.MethodDelete, "/api/users/me", "", true, true, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouterFixture().router(t)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, newAPIRequest(tt.method, tt.path, tt.body, tt.withSession, tt.withCSRF))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode != "" {
				if body := parseAPIErrorResponse(t, w); body.Code != tt.wantCode {
					t.Errorf("expected code %s, got %q", tt.wantCode, body.Code)
				}
			}
		})
	}
}

func TestRouter_RelationRoutesPassKind(t *testing.T) {
	f := newRouterFixture()
	var kinds []model.RelationKind
	f.relations.addFn = func(ctx context.Context, kind model.RelationKind, userID, recipeID string, attrs model.RelationAttrs) (*recipeBriefResponse, error) {
		kinds = append(kinds, kind)
		return &recipeBriefResponse{ID: recipeID}, nil
	}
	r := f.router(t)

	for _, path := range []string{"/api/recipes/recipe-1/favorite", "/api/recipes/recipe-1/shopping_cart"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAPIRequest(http.MethodPost, path, "", true, true))
		if w.Code != http.StatusCreated {
			t.Fatalf("%s: expected status 201, got %d", path, w.Code)
		}
	}

	if len(kinds) != 2 || kinds[0] != model.RelationFavorite || kinds[1] != model.RelationShoppingCart {
		t.Errorf("unexpected kinds: %v", kinds)
	}
}

func TestRouter_MeTakesPrecedenceOverUserID(t *testing.T) {
	f := newRouterFixture()
	var gotUser string
	f.users.profileFn = func(ctx context.Context, viewerID, userID string) (*userResponse, error) {
		gotUser = userID
		return &userResponse{ID: userID}, nil
	}
	r := f.router(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAPIRequest(http.MethodGet, "/api/users/me", "", true, false))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotUser != testUserID {
		t.Errorf("expected /me to resolve to %s, got %q", testUserID, gotUser)
	}
}

func TestRouter_DownloadShoppingCartIsNotRecipeID(t *testing.T) {
	f := newRouterFixture()
	f.recipes.getFn = func(ctx context.Context, viewerID, recipeID string) (*recipeResponse, error) {
		t.Errorf("download route must not be handled as recipe %q", recipeID)
		return nil, nil
	}
	r := f.router(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAPIRequest(http.MethodGet, "/api/recipes/download_shopping_cart", "", true, false))

	// 空の買い物リストはEMPTY_SHOPPING_CART
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestRouter_RecipeWriteRateLimit(t *testing.T) {
	f := newRouterFixture()
	f.deps.RateLimiter.Stop()
	f.deps.RateLimiter = middleware.NewRateLimiter(middleware.PerMinuteConfig(120, 1))
	r := f.router(t)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, newAPIRequest(http.MethodPost, "/api/recipes", `{}`, true, true))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first create to succeed, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, newAPIRequest(http.MethodPost, "/api/recipes", `{}`, true, true))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// 読み取りは書き込み制限の影響を受けない
	read := httptest.NewRecorder()
	r.ServeHTTP(read, newAPIRequest(http.MethodGet, "/api/recipes", "", true, false))
	if read.Code != http.StatusOK {
		t.Errorf("expected read to succeed, got %d", read.Code)
	}
}

func TestRouter_CSRFTokenEndpoint(t *testing.T) {
	r := newRouterFixture().router(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAPIRequest(http.MethodGet, "/api/csrf-token", "", false, false))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := decodeBody[map[string]string](t, w)
	if resp["token"] == "" {
		t.Error("expected a token")
	}
}
