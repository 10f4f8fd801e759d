package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/recipebox/internal/model"
)

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *model.APIError
		status int
	}{
		{"バリデーション", model.NewValidationError([]model.FieldError{{Code: model.ErrCodeMissingField}}), http.StatusBadRequest},
		{"不正なリクエスト", model.NewInvalidRequestError("x"), http.StatusBadRequest},
		{"未認証", model.NewUnauthorizedError(), http.StatusUnauthorized},
		{"権限なし", model.NewPermissionDeniedError(), http.StatusForbidden},
		{"レシピ未検出", model.NewRecipeNotFoundError("r1"), http.StatusNotFound},
		{"ユーザー未検出", model.NewUserNotFoundError(), http.StatusNotFound},
		{"材料未検出", model.NewIngredientNotFoundError("i1"), http.StatusNotFound},
		{"タグ未検出", model.NewTagNotFoundError("t1"), http.StatusNotFound},
		{"お気に入り重複", model.NewDuplicateRelationError(model.RelationFavorite), http.StatusBadRequest},
		{"買い物リスト未登録", model.NewRelationNotFoundError(model.RelationShoppingCart), http.StatusBadRequest},
		{"不正なリレーション属性", model.NewInvalidRelationPayloadError("planned_date"), http.StatusBadRequest},
		{"自分自身をフォロー", model.NewSelfSubscriptionError(), http.StatusBadRequest},
		{"フォロー重複", model.NewDuplicateSubscriptionError(), http.StatusBadRequest},
		{"フォロー未登録", model.NewSubscriptionNotFoundError("u2"), http.StatusBadRequest},
		{"空の買い物リスト", model.NewEmptyShoppingCartError(), http.StatusBadRequest},
		{"未知のコード", &model.APIError{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.status {
				t.Errorf("expected %d for %s, got %d", tt.status, tt.err.Code, got)
			}
		})
	}
}

func TestHandleServiceError_WrappedAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(w, fmt.Errorf("wrap: %w", model.NewPermissionDeniedError()))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
	if body := parseAPIErrorResponse(t, w); body.Code != model.ErrCodePermissionDenied {
		t.Errorf("expected code PERMISSION_DENIED, got %q", body.Code)
	}
}

func TestHandleServiceError_UnknownError_ReturnsInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(w, errors.New("connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	body := parseAPIErrorResponse(t, w)
	if body.Code != model.ErrCodeInternal {
		t.Errorf("expected code INTERNAL_ERROR, got %q", body.Code)
	}
	if strings.Contains(body.Message, "connection refused") {
		t.Error("internal error details must not leak to the response")
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		allowEmpty bool
		wantOK     bool
	}{
		{"正常なJSON", `{"planned_date":"2024-05-01"}`, false, true},
		{"空ボディを許可", "", true, true},
		{"空ボディを拒否", "", false, false},
		{"不正なJSON", `{"planned_date":`, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst relationRequest
			ok := decodeJSON(w, req, &dst, tt.allowEmpty)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				if w.Code != http.StatusBadRequest {
					t.Errorf("expected status 400, got %d", w.Code)
				}
				if body := parseAPIErrorResponse(t, w); body.Code != model.ErrCodeInvalidRequest {
					t.Errorf("expected code INVALID_REQUEST, got %q", body.Code)
				}
			}
		})
	}
}
