package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CatalogServiceInterface は材料カタログとタグのハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	// SearchIngredients は名前の前方一致で材料を検索する。空の場合は全件を返す。
	SearchIngredients(ctx context.Context, prefix string) ([]ingredientResponse, error)
	// GetIngredient は材料を1件返す。
	GetIngredient(ctx context.Context, id string) (*ingredientResponse, error)
	// ListTags は全タグを返す。
	ListTags(ctx context.Context) ([]tagResponse, error)
	// GetTag はタグを1件返す。
	GetTag(ctx context.Context, id string) (*tagResponse, error)
}

// CatalogHandler は材料カタログとタグの参照用HTTPハンドラー。認証は不要。
type CatalogHandler struct {
	service CatalogServiceInterface
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// SearchIngredients は材料を検索する。
// GET /api/ingredients?name=
func (h *CatalogHandler) SearchIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.service.SearchIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if ingredients == nil {
		ingredients = []ingredientResponse{}
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// GetIngredient は材料を取得する。
// GET /api/ingredients/{id}
func (h *CatalogHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	ingredient, err := h.service.GetIngredient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

// ListTags はタグ一覧を取得する。
// GET /api/tags
func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if tags == nil {
		tags = []tagResponse{}
	}
	writeJSON(w, http.StatusOK, tags)
}

// GetTag はタグを取得する。
// GET /api/tags/{id}
func (h *CatalogHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.service.GetTag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}
