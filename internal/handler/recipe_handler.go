package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipebox/internal/middleware"
	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/recipe"
)

// shoppingListFilename は買い物リストのダウンロードファイル名。
const shoppingListFilename = "shopping_cart.txt"

// RecipeServiceInterface はレシピハンドラーが必要とするサービスインターフェース。
type RecipeServiceInterface interface {
	// List はレシピ一覧と総件数を返す。
	List(ctx context.Context, viewerID string, filter recipe.Filter, page model.PageRequest) ([]recipeResponse, int, error)
	// Get はレシピ詳細を返す。
	Get(ctx context.Context, viewerID, recipeID string) (*recipeResponse, error)
	// Create はレシピを作成する。
	Create(ctx context.Context, actorID string, in recipe.Input) (*recipeResponse, error)
	// Update はレシピを更新する。作者以外はPERMISSION_DENIED。
	Update(ctx context.Context, actorID, recipeID string, in recipe.Input) (*recipeResponse, error)
	// Delete はレシピを削除する。作者以外はPERMISSION_DENIED。
	Delete(ctx context.Context, actorID, recipeID string) error
	// ShareLink はレシピの共有用URLを返す。
	ShareLink(ctx context.Context, recipeID string) (string, error)
}

// ShoppingListServiceInterface は買い物リストのダウンロードが必要とするサービスインターフェース。
type ShoppingListServiceInterface interface {
	// Download は買い物リストをテキストで返す。
	Download(ctx context.Context, userID string) (string, error)
}

// RecipeHandler はレシピのHTTPハンドラー。
type RecipeHandler struct {
	service      RecipeServiceInterface
	shoppingList ShoppingListServiceInterface
	pages        PageConfig
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(service RecipeServiceInterface, shoppingList ShoppingListServiceInterface, pages PageConfig) *RecipeHandler {
	return &RecipeHandler{
		service:      service,
		shoppingList: shoppingList,
		pages:        pages,
	}
}

// shareLinkResponse は共有用URLのAPIレスポンス。
type shareLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// isTruthy はクエリの真偽値を判定する。"1"と"true"のみを真とする。
func isTruthy(v string) bool {
	return v == "1" || v == "true"
}

// parseFilter は一覧の絞り込みクエリを読み取る。tagsは複数指定できる。
func parseFilter(r *http.Request) recipe.Filter {
	q := r.URL.Query()
	return recipe.Filter{
		AuthorID:         q.Get("author"),
		TagSlugs:         q["tags"],
		IsFavorited:      isTruthy(q.Get("is_favorited")),
		IsInShoppingCart: isTruthy(q.Get("is_in_shopping_cart")),
	}
}

// List はレシピ一覧を取得する。
// GET /api/recipes?author=&tags=&is_favorited=&is_in_shopping_cart=&page=&limit=
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	page := h.pages.parsePageRequest(r)

	recipes, total, err := h.service.List(r.Context(), middleware.ViewerIDFromContext(r.Context()), parseFilter(r), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(h.pages, r, page, total, recipes))
}

// Get はレシピ詳細を取得する。
// GET /api/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), middleware.ViewerIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Create はレシピを作成する。
// POST /api/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var in recipe.Input
	if !decodeJSON(w, r, &in, false) {
		return
	}

	detail, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// Update はレシピを更新する。
// PATCH /api/recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var in recipe.Input
	if !decodeJSON(w, r, &in, false) {
		return
	}

	detail, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Delete はレシピを削除する。
// DELETE /api/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShareLink はレシピの共有用URLを取得する。
// GET /api/recipes/{id}/get-link
func (h *RecipeHandler) ShareLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ShareLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shareLinkResponse{ShortLink: link})
}

// DownloadShoppingList は買い物リストをテキストファイルとしてダウンロードさせる。
// GET /api/recipes/download_shopping_cart
func (h *RecipeHandler) DownloadShoppingList(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	text, err := h.shoppingList.Download(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}
