package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/recipebox/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。一括バリデーションの場合はdetailsに個別エラーを並べる。
type ErrorResponseBody struct {
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Category string           `json:"category"`
	Action   string           `json:"action"`
	Details  []FieldErrorBody `json:"details,omitempty"`
}

// FieldErrorBody は個別エラー1件のレスポンス表現。
// indexは材料行に紐付く場合のみ出力する。
type FieldErrorBody struct {
	Field   string   `json:"field,omitempty"`
	Index   *int     `json:"index,omitempty"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	IDs     []string `json:"ids,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	body := ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}
	for _, d := range apiErr.Details {
		body.Details = append(body.Details, FieldErrorBody{
			Field:   d.Field,
			Index:   d.Index,
			Code:    d.Code,
			Message: d.Message,
			IDs:     d.IDs,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     model.ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}
