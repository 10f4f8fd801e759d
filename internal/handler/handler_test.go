package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipebox/internal/middleware"
	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/recipe"
)

// --- モック定義 ---

// mockCatalogService はCatalogServiceInterfaceのモック実装。
type mockCatalogService struct {
	searchIngredientsFn func(ctx context.Context, prefix string) ([]ingredientResponse, error)
	getIngredientFn     func(ctx context.Context, id string) (*ingredientResponse, error)
	listTagsFn          func(ctx context.Context) ([]tagResponse, error)
	getTagFn            func(ctx context.Context, id string) (*tagResponse, error)
}

func (m *mockCatalogService) SearchIngredients(ctx context.Context, prefix string) ([]ingredientResponse, error) {
	if m.searchIngredientsFn != nil {
		return m.searchIngredientsFn(ctx, prefix)
	}
	return nil, nil
}

func (m *mockCatalogService) GetIngredient(ctx context.Context, id string) (*ingredientResponse, error) {
	if m.getIngredientFn != nil {
		return m.getIngredientFn(ctx, id)
	}
	return nil, model.NewIngredientNotFoundError(id)
}

func (m *mockCatalogService) ListTags(ctx context.Context) ([]tagResponse, error) {
	if m.listTagsFn != nil {
		return m.listTagsFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogService) GetTag(ctx context.Context, id string) (*tagResponse, error) {
	if m.getTagFn != nil {
		return m.getTagFn(ctx, id)
	}
	return nil, model.NewTagNotFoundError(id)
}

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	registerFn func(ctx context.Context, req registerRequest) (*userResponse, error)
	profileFn  func(ctx context.Context, viewerID, userID string) (*userResponse, error)
	listFn     func(ctx context.Context, viewerID string, page model.PageRequest) ([]userResponse, int, error)
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Register(ctx context.Context, req registerRequest) (*userResponse, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return &userResponse{ID: "user-new", Email: req.Email, Username: req.Username}, nil
}

func (m *mockUserService) Profile(ctx context.Context, viewerID, userID string) (*userResponse, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx, viewerID, userID)
	}
	return &userResponse{ID: userID}, nil
}

func (m *mockUserService) List(ctx context.Context, viewerID string, page model.PageRequest) ([]userResponse, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, viewerID, page)
	}
	return nil, 0, nil
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// mockSubscriptionService はSubscriptionServiceInterfaceのモック実装。
type mockSubscriptionService struct {
	listFollowedFn func(ctx context.Context, userID string, recipesLimit int, page model.PageRequest) ([]authorResponse, int, error)
	subscribeFn    func(ctx context.Context, followerID, authorID string, recipesLimit int) (*authorResponse, error)
	unsubscribeFn  func(ctx context.Context, followerID, authorID string) error
}

func (m *mockSubscriptionService) ListFollowed(ctx context.Context, userID string, recipesLimit int, page model.PageRequest) ([]authorResponse, int, error) {
	if m.listFollowedFn != nil {
		return m.listFollowedFn(ctx, userID, recipesLimit, page)
	}
	return nil, 0, nil
}

func (m *mockSubscriptionService) Subscribe(ctx context.Context, followerID, authorID string, recipesLimit int) (*authorResponse, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, followerID, authorID, recipesLimit)
	}
	return &authorResponse{userResponse: userResponse{ID: authorID, IsSubscribed: true}}, nil
}

func (m *mockSubscriptionService) Unsubscribe(ctx context.Context, followerID, authorID string) error {
	if m.unsubscribeFn != nil {
		return m.unsubscribeFn(ctx, followerID, authorID)
	}
	return nil
}

// mockRecipeService はRecipeServiceInterfaceのモック実装。
type mockRecipeService struct {
	listFn      func(ctx context.Context, viewerID string, filter recipe.Filter, page model.PageRequest) ([]recipeResponse, int, error)
	getFn       func(ctx context.Context, viewerID, recipeID string) (*recipeResponse, error)
	createFn    func(ctx context.Context, actorID string, in recipe.Input) (*recipeResponse, error)
	updateFn    func(ctx context.Context, actorID, recipeID string, in recipe.Input) (*recipeResponse, error)
	deleteFn    func(ctx context.Context, actorID, recipeID string) error
	shareLinkFn func(ctx context.Context, recipeID string) (string, error)
}

func (m *mockRecipeService) List(ctx context.Context, viewerID string, filter recipe.Filter, page model.PageRequest) ([]recipeResponse, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, viewerID, filter, page)
	}
	return nil, 0, nil
}

func (m *mockRecipeService) Get(ctx context.Context, viewerID, recipeID string) (*recipeResponse, error) {
	if m.getFn != nil {
		return m.getFn(ctx, viewerID, recipeID)
	}
	return &recipeResponse{ID: recipeID}, nil
}

func (m *mockRecipeService) Create(ctx context.Context, actorID string, in recipe.Input) (*recipeResponse, error) {
	if m.createFn != nil {
		return m.createFn(ctx, actorID, in)
	}
	return &recipeResponse{ID: "recipe-new", Author: userResponse{ID: actorID}}, nil
}

func (m *mockRecipeService) Update(ctx context.Context, actorID, recipeID string, in recipe.Input) (*recipeResponse, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, actorID, recipeID, in)
	}
	return &recipeResponse{ID: recipeID, Author: userResponse{ID: actorID}}, nil
}

func (m *mockRecipeService) Delete(ctx context.Context, actorID, recipeID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, actorID, recipeID)
	}
	return nil
}

func (m *mockRecipeService) ShareLink(ctx context.Context, recipeID string) (string, error) {
	if m.shareLinkFn != nil {
		return m.shareLinkFn(ctx, recipeID)
	}
	return "http://localhost:3000/recipes/" + recipeID, nil
}

// mockRelationService はRelationServiceInterfaceのモック実装。
type mockRelationService struct {
	addFn    func(ctx context.Context, kind model.RelationKind, userID, recipeID string, attrs model.RelationAttrs) (*recipeBriefResponse, error)
	removeFn func(ctx context.Context, kind model.RelationKind, userID, recipeID string) error
}

func (m *mockRelationService) Add(ctx context.Context, kind model.RelationKind, userID, recipeID string, attrs model.RelationAttrs) (*recipeBriefResponse, error) {
	if m.addFn != nil {
		return m.addFn(ctx, kind, userID, recipeID, attrs)
	}
	return &recipeBriefResponse{ID: recipeID}, nil
}

func (m *mockRelationService) Remove(ctx context.Context, kind model.RelationKind, userID, recipeID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, kind, userID, recipeID)
	}
	return nil
}

// mockShoppingListService はShoppingListServiceInterfaceのモック実装。
type mockShoppingListService struct {
	downloadFn func(ctx context.Context, userID string) (string, error)
}

func (m *mockShoppingListService) Download(ctx context.Context, userID string) (string, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, userID)
	}
	return "", model.NewEmptyShoppingCartError()
}

// --- テストヘルパー ---

// testPages はテスト用のページネーション設定。
var testPages = PageConfig{BaseURL: "http://localhost:8080", DefaultSize: 6, MaxSize: 100}

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディから統一エラーフォーマットをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var result middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// decodeBody はレスポンスボディを任意の型にデコードするヘルパー。
func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}
