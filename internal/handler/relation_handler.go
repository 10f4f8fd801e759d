package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipebox/internal/middleware"
	"github.com/hitoshi/recipebox/internal/model"
)

// plannedDateLayout は買い物予定日の書式。
const plannedDateLayout = "2006-01-02"

// RelationServiceInterface はお気に入り・買い物リストのハンドラーが必要とするサービスインターフェース。
type RelationServiceInterface interface {
	// Add はレシピをリレーションに追加し、簡略表現を返す。
	Add(ctx context.Context, kind model.RelationKind, userID, recipeID string, attrs model.RelationAttrs) (*recipeBriefResponse, error)
	// Remove はレシピをリレーションから外す。
	Remove(ctx context.Context, kind model.RelationKind, userID, recipeID string) error
}

// RelationHandler はお気に入りと買い物リストのHTTPハンドラー。
// 種別はルーティング時にAdd/Removeへ渡す。
type RelationHandler struct {
	service RelationServiceInterface
}

// NewRelationHandler はRelationHandlerを生成する。
func NewRelationHandler(service RelationServiceInterface) *RelationHandler {
	return &RelationHandler{service: service}
}

// relationRequest はリレーション追加リクエストの任意ボディ。
type relationRequest struct {
	PlannedDate *string `json:"planned_date"`
}

// Add はレシピをリレーションに追加する。
// POST /api/recipes/{id}/favorite
// POST /api/recipes/{id}/shopping_cart
func (h *RelationHandler) Add(kind model.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserIDFromContext(r.Context())
		if err != nil {
			writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}

		var req relationRequest
		if !decodeJSON(w, r, &req, true) {
			return
		}

		var attrs model.RelationAttrs
		if req.PlannedDate != nil && strings.TrimSpace(*req.PlannedDate) != "" {
			d, err := time.Parse(plannedDateLayout, strings.TrimSpace(*req.PlannedDate))
			if err != nil {
				writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRelationPayloadError("planned_date"))
				return
			}
			attrs.PlannedDate = &d
		}

		brief, err := h.service.Add(r.Context(), kind, userID, chi.URLParam(r, "id"), attrs)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, brief)
	}
}

// Remove はレシピをリレーションから外す。
// DELETE /api/recipes/{id}/favorite
// DELETE /api/recipes/{id}/shopping_cart
func (h *RelationHandler) Remove(kind model.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserIDFromContext(r.Context())
		if err != nil {
			writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}

		if err := h.service.Remove(r.Context(), kind, userID, chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
