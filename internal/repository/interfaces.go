// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/recipebox/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByIDs は指定IDのユーザーをまとめて取得する。存在しないIDは結果に含まれない。
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスまたはユーザー名の重複はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// List はユーザー名順のユーザー一覧と総件数を返す。
	List(ctx context.Context, limit, offset int) ([]*model.User, int, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// レシピ、リレーション、フォロー関係、セッションはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの参照インターフェース。
// セッションの発行は外部の認証基盤が行う。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// IngredientRepository は材料カタログの参照インターフェース。
type IngredientRepository interface {
	// SearchByPrefix は名前の前方一致（大文字小文字を区別しない）で材料を名前順に返す。
	// prefixが空の場合は全件を返す。limitが0以下の場合は件数を制限しない。
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*model.Ingredient, error)

	// FindByID は指定IDの材料を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Ingredient, error)

	// FindExistingIDs は指定IDのうちカタログに存在するものを1回のクエリで返す。
	FindExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

// TagRepository はタグの参照インターフェース。
type TagRepository interface {
	// List は全タグを名前順に返す。
	List(ctx context.Context) ([]*model.Tag, error)

	// FindByID は指定IDのタグを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Tag, error)

	// FindExistingIDs は指定IDのうち存在するものを返す。
	FindExistingIDs(ctx context.Context, ids []string) ([]string, error)

	// ListByRecipeIDs はレシピIDごとのタグ一覧を返す。
	ListByRecipeIDs(ctx context.Context, recipeIDs []string) (map[string][]*model.Tag, error)
}

// RecipeRepository はレシピ集約の永続化インターフェース。
// 材料行とタグの紐付けはレシピ本体と同一トランザクションで書き込む。
type RecipeRepository interface {
	// FindByID は指定IDのレシピを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Recipe, error)

	// List はフィルタ条件に一致するレシピを新しい順に返す。総件数も併せて返す。
	List(ctx context.Context, filter model.RecipeFilter) ([]*model.Recipe, int, error)

	// ListByAuthors は作者ごとの最新レシピを最大limitPerAuthor件ずつ返す。
	// limitPerAuthorが0以下の場合は全件を返す。
	ListByAuthors(ctx context.Context, authorIDs []string, limitPerAuthor int) (map[string][]*model.Recipe, error)

	// CountByAuthors は作者ごとのレシピ数を返す。
	CountByAuthors(ctx context.Context, authorIDs []string) (map[string]int, error)

	// Create はレシピ本体、材料行、タグの紐付けを1トランザクションで作成する。
	Create(ctx context.Context, recipe *model.Recipe, lines []model.RecipeIngredient, tagIDs []string) error

	// Update はレシピ本体を更新し、材料行とタグの紐付けを全置換する。
	// 途中で失敗した場合はロールバックされ、元の材料行が残る。
	Update(ctx context.Context, recipe *model.Recipe, lines []model.RecipeIngredient, tagIDs []string) error

	// Delete は指定IDのレシピを削除する。材料行とリレーションはCASCADE削除される。
	Delete(ctx context.Context, id string) error

	// ListLines はレシピIDごとの材料行を材料名順に返す。
	ListLines(ctx context.Context, recipeIDs []string) (map[string][]model.IngredientLine, error)
}

// RelationRepository はお気に入り・買い物リストの永続化インターフェース。
// 種別ごとに対応するテーブルを切り替える。
type RelationRepository interface {
	// Add はリレーションを作成する。(ユーザー, レシピ)の組が既に存在する場合はErrDuplicateを返す。
	Add(ctx context.Context, rel *model.Relation) error

	// Remove はリレーションを削除する。削除対象が存在しなかった場合はfalseを返す。
	Remove(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error)

	// Exists はリレーションが存在するかを返す。
	Exists(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error)

	// ExistingRecipeIDs は指定レシピのうちユーザーのリレーションに含まれるものを返す。
	ExistingRecipeIDs(ctx context.Context, kind model.RelationKind, userID string, recipeIDs []string) (map[string]bool, error)

	// CountByUser はユーザーのリレーション件数を返す。
	CountByUser(ctx context.Context, kind model.RelationKind, userID string) (int, error)

	// ListCartLines はユーザーの買い物リストに含まれる全レシピの材料行を返す。
	ListCartLines(ctx context.Context, userID string) ([]model.IngredientLine, error)
}

// SubscriptionRepository はフォロー関係の永続化インターフェース。
type SubscriptionRepository interface {
	// Create はフォロー関係を作成する。既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, sub *model.Subscription) error

	// Delete はフォロー関係を削除する。削除対象が存在しなかった場合はfalseを返す。
	Delete(ctx context.Context, followerID, authorID string) (bool, error)

	// Exists はフォロー関係が存在するかを返す。
	Exists(ctx context.Context, followerID, authorID string) (bool, error)

	// ExistingAuthorIDs は指定作者のうちフォロー済みのものを返す。
	ExistingAuthorIDs(ctx context.Context, followerID string, authorIDs []string) (map[string]bool, error)

	// ListAuthorsByFollower はフォロー中の作者を新しくフォローした順に返す。総件数も併せて返す。
	ListAuthorsByFollower(ctx context.Context, followerID string, limit, offset int) ([]*model.User, int, error)
}
