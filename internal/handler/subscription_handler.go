package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipebox/internal/middleware"
	"github.com/hitoshi/recipebox/internal/model"
)

// SubscriptionServiceInterface はフォローハンドラーが必要とするサービスインターフェース。
type SubscriptionServiceInterface interface {
	// ListFollowed はフォロー中の作者カード一覧と総件数を返す。
	ListFollowed(ctx context.Context, userID string, recipesLimit int, page model.PageRequest) ([]authorResponse, int, error)
	// Subscribe は作者をフォローし、作者カードを返す。
	Subscribe(ctx context.Context, followerID, authorID string, recipesLimit int) (*authorResponse, error)
	// Unsubscribe はフォローを解除する。
	Unsubscribe(ctx context.Context, followerID, authorID string) error
}

// SubscriptionHandler は作者フォローのHTTPハンドラー。全エンドポイントで認証が必要。
type SubscriptionHandler struct {
	service SubscriptionServiceInterface
	pages   PageConfig
}

// NewSubscriptionHandler はSubscriptionHandlerを生成する。
func NewSubscriptionHandler(service SubscriptionServiceInterface, pages PageConfig) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		pages:   pages,
	}
}

// parseRecipesLimit はrecipes_limitクエリを読み取る。
// 未指定、数値以外、0以下の場合は0（制限なし）を返す。
func parseRecipesLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("recipes_limit"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// ListFollowed はフォロー中の作者一覧を取得する。
// GET /api/users/subscriptions?recipes_limit=&page=&limit=
func (h *SubscriptionHandler) ListFollowed(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	page := h.pages.parsePageRequest(r)
	authors, total, err := h.service.ListFollowed(r.Context(), userID, parseRecipesLimit(r), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(h.pages, r, page, total, authors))
}

// Subscribe は作者をフォローする。
// POST /api/users/{id}/subscribe?recipes_limit=
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	author, err := h.service.Subscribe(r.Context(), userID, chi.URLParam(r, "id"), parseRecipesLimit(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, author)
}

// Unsubscribe はフォローを解除する。
// DELETE /api/users/{id}/subscribe
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Unsubscribe(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
