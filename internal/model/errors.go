// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string       // エラーコード
	Message  string       // エラーメッセージ
	Category string       // カテゴリ: auth, validation, permission, recipe, relation, user, system
	Action   string       // ユーザー向け対処方法
	Details  []FieldError // 一括バリデーションで収集した個別エラー
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	codes := make([]string, len(e.Details))
	for i, d := range e.Details {
		codes[i] = d.Code
	}
	return fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, strings.Join(codes, ", "))
}

// HasDetail は指定コードの個別エラーを含むかを返す。
func (e *APIError) HasDetail(code string) bool {
	for _, d := range e.Details {
		if d.Code == code {
			return true
		}
	}
	return false
}

// FieldError は入力の1項目に対するバリデーションエラー。
// 材料行に紐付く場合はIndexに0始まりの行番号を持つ。
type FieldError struct {
	Field   string
	Index   *int
	Code    string
	Message string
	IDs     []string
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	ErrCodeEmptyIngredients    = "EMPTY_INGREDIENTS"
	ErrCodeMissingID           = "MISSING_ID"
	ErrCodeMissingAmount       = "MISSING_AMOUNT"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeDuplicateIngredient = "DUPLICATE_INGREDIENT"
	ErrCodeUnknownIngredient   = "UNKNOWN_INGREDIENT"
	ErrCodeUnknownTag          = "UNKNOWN_TAG"
	ErrCodeDuplicateTag        = "DUPLICATE_TAG"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeInvalidField        = "INVALID_FIELD"
	ErrCodeInvalidImage        = "INVALID_IMAGE"
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeDuplicateUsername   = "DUPLICATE_USERNAME"

	ErrCodePermissionDenied = "PERMISSION_DENIED"

	ErrCodeDuplicateFavorite      = "DUPLICATE_FAVORITE"
	ErrCodeDuplicateShoppingCart  = "DUPLICATE_SHOPPING_CART"
	ErrCodeDuplicateSubscription  = "DUPLICATE_SUBSCRIPTION"
	ErrCodeFavoriteNotFound       = "FAVORITE_NOT_FOUND"
	ErrCodeShoppingCartNotFound   = "SHOPPING_CART_NOT_FOUND"
	ErrCodeSubscriptionNotFound   = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeSelfSubscription       = "SELF_SUBSCRIPTION"
	ErrCodeEmptyShoppingCart      = "EMPTY_SHOPPING_CART"
	ErrCodeRecipeNotFound         = "RECIPE_NOT_FOUND"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeIngredientNotFound     = "INGREDIENT_NOT_FOUND"
	ErrCodeTagNotFound            = "TAG_NOT_FOUND"
	ErrCodeInvalidRelationKind    = "INVALID_RELATION_KIND"
	ErrCodeInvalidRelationPayload = "INVALID_RELATION_PAYLOAD"

	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeCSRFFailed     = "CSRF_FAILED"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// NewValidationError は収集済みの個別エラーをまとめたバリデーションエラーを生成する。
// 最初の1件で打ち切らず、検出した全ての問題を返す。
func NewValidationError(details []FieldError) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に%d件の問題があります。", len(details)),
		Category: "validation",
		Action:   "detailsに示された項目を修正して再度送信してください。",
		Details:  details,
	}
}

// NewPermissionDeniedError は作成者以外による変更操作のエラーを生成する。
func NewPermissionDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  "このレシピを変更する権限がありません。",
		Category: "permission",
		Action:   "レシピの変更と削除は作成者のみが行えます。",
	}
}

// NewRecipeNotFoundError はレシピ未検出エラーを生成する。
func NewRecipeNotFoundError(recipeID string) *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNotFound,
		Message:  fmt.Sprintf("指定されたレシピが見つかりません: %s", recipeID),
		Category: "recipe",
		Action:   "レシピIDを確認してください。",
	}
}

// NewIngredientNotFoundError は材料未検出エラーを生成する。
func NewIngredientNotFoundError(ingredientID string) *APIError {
	return &APIError{
		Code:     ErrCodeIngredientNotFound,
		Message:  fmt.Sprintf("指定された材料が見つかりません: %s", ingredientID),
		Category: "recipe",
		Action:   "材料IDを確認してください。",
	}
}

// NewTagNotFoundError はタグ未検出エラーを生成する。
func NewTagNotFoundError(tagID string) *APIError {
	return &APIError{
		Code:     ErrCodeTagNotFound,
		Message:  fmt.Sprintf("指定されたタグが見つかりません: %s", tagID),
		Category: "recipe",
		Action:   "タグIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "user",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewDuplicateRelationError は登録済みのお気に入り・買い物かごへの再登録エラーを生成する。
func NewDuplicateRelationError(kind RelationKind) *APIError {
	if kind == RelationShoppingCart {
		return &APIError{
			Code:     ErrCodeDuplicateShoppingCart,
			Message:  "このレシピは既に買い物リストに追加されています。",
			Category: "relation",
			Action:   "買い物リストの内容を確認してください。",
		}
	}
	return &APIError{
		Code:     ErrCodeDuplicateFavorite,
		Message:  "このレシピは既にお気に入りに追加されています。",
		Category: "relation",
		Action:   "お気に入り一覧を確認してください。",
	}
}

// NewRelationNotFoundError は未登録のお気に入り・買い物かごを解除しようとした場合のエラーを生成する。
func NewRelationNotFoundError(kind RelationKind) *APIError {
	if kind == RelationShoppingCart {
		return &APIError{
			Code:     ErrCodeShoppingCartNotFound,
			Message:  "このレシピは買い物リストに入っていません。",
			Category: "relation",
			Action:   "買い物リストの内容を確認してください。",
		}
	}
	return &APIError{
		Code:     ErrCodeFavoriteNotFound,
		Message:  "このレシピはお気に入りに入っていません。",
		Category: "relation",
		Action:   "お気に入り一覧を確認してください。",
	}
}

// NewInvalidRelationKindError は未知のリレーション種別のエラーを生成する。
func NewInvalidRelationKindError(kind string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRelationKind,
		Message:  fmt.Sprintf("無効なリレーション種別です: %s", kind),
		Category: "validation",
		Action:   "favorite または shopping_cart を指定してください。",
	}
}

// NewInvalidRelationPayloadError はリレーション種別が受け付けない属性を指定した場合のエラーを生成する。
func NewInvalidRelationPayloadError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRelationPayload,
		Message:  fmt.Sprintf("この操作では%sを指定できません。", field),
		Category: "validation",
		Action:   "調理予定日は買い物リストへの追加時のみ指定できます。",
	}
}

// NewSelfSubscriptionError は自分自身へのフォローエラーを生成する。
func NewSelfSubscriptionError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfSubscription,
		Message:  "自分自身をフォローすることはできません。",
		Category: "user",
		Action:   "他のユーザーを指定してください。",
	}
}

// NewDuplicateSubscriptionError は既にフォロー済みの作者を再度フォローしようとした場合のエラーを生成する。
func NewDuplicateSubscriptionError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSubscription,
		Message:  "このユーザーは既にフォローしています。",
		Category: "user",
		Action:   "フォロー一覧から該当ユーザーを確認してください。",
	}
}

// NewSubscriptionNotFoundError はフォローしていない作者を解除しようとした場合のエラーを生成する。
func NewSubscriptionNotFoundError(authorID string) *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionNotFound,
		Message:  fmt.Sprintf("このユーザーをフォローしていません: %s", authorID),
		Category: "user",
		Action:   "フォロー一覧を確認してください。",
	}
}

// NewEmptyShoppingCartError は買い物リストが空の場合のエラーを生成する。
func NewEmptyShoppingCartError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyShoppingCart,
		Message:  "買い物リストが空です。",
		Category: "relation",
		Action:   "レシピを買い物リストに追加してからダウンロードしてください。",
	}
}

// NewUnauthorizedError は未認証のリクエストに対するエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewInvalidRequestError はリクエストボディやクエリを解釈できない場合のエラーを生成する。
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  message,
		Category: "validation",
		Action:   "リクエストの形式を確認してください。",
	}
}
