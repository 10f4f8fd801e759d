package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/lib/pq"
)

// relationTables はリレーション種別と格納先テーブルの対応。
// SQLに埋め込むテーブル名はこのマップの値に限定する。
var relationTables = map[model.RelationKind]string{
	model.RelationFavorite:     "favorites",
	model.RelationShoppingCart: "shopping_cart",
}

func relationTable(kind model.RelationKind) (string, error) {
	table, ok := relationTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown relation kind: %q", kind)
	}
	return table, nil
}

// PostgresRelationRepo はPostgreSQLを使用したリレーションリポジトリ。
// お気に入りと買い物リストを同一の実装で扱う。
type PostgresRelationRepo struct {
	db *sql.DB
}

// NewPostgresRelationRepo はPostgresRelationRepoを生成する。
func NewPostgresRelationRepo(db *sql.DB) *PostgresRelationRepo {
	return &PostgresRelationRepo{db: db}
}

// Add はリレーションを作成する。一意制約違反はErrDuplicateとして返す。
// 事前チェックではなく制約に判定させるため、同時に追加された場合も一方のみが成功する。
func (r *PostgresRelationRepo) Add(ctx context.Context, rel *model.Relation) error {
	table, err := relationTable(rel.Kind)
	if err != nil {
		return err
	}

	if rel.Kind == model.RelationShoppingCart {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO shopping_cart (id, user_id, recipe_id, planned_date, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			rel.ID, rel.UserID, rel.RecipeID, rel.Attrs.PlannedDate, rel.CreatedAt,
		)
	} else {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO `+table+` (id, user_id, recipe_id, created_at)
			 VALUES ($1, $2, $3, $4)`,
			rel.ID, rel.UserID, rel.RecipeID, rel.CreatedAt,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", table, translateError(err))
	}
	return nil
}

// Remove はリレーションを削除する。削除対象が存在しなかった場合はfalseを返す。
func (r *PostgresRelationRepo) Remove(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error) {
	table, err := relationTable(kind)
	if err != nil {
		return false, err
	}
	if !isUUID(userID) || !isUUID(recipeID) {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", table, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Exists はリレーションが存在するかを返す。
func (r *PostgresRelationRepo) Exists(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error) {
	table, err := relationTable(kind)
	if err != nil {
		return false, err
	}
	if !isUUID(userID) || !isUUID(recipeID) {
		return false, nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE user_id = $1 AND recipe_id = $2)`,
		userID, recipeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return exists, nil
}

// ExistingRecipeIDs は指定レシピのうちユーザーのリレーションに含まれるものを返す。
// 一覧表示で閲覧者ごとのフラグを1回のクエリで求めるために使う。
func (r *PostgresRelationRepo) ExistingRecipeIDs(ctx context.Context, kind model.RelationKind, userID string, recipeIDs []string) (map[string]bool, error) {
	table, err := relationTable(kind)
	if err != nil {
		return nil, err
	}
	result := make(map[string]bool)
	recipeIDs = validUUIDs(recipeIDs)
	if !isUUID(userID) || len(recipeIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT recipe_id FROM `+table+` WHERE user_id = $1 AND recipe_id = ANY($2::uuid[])`,
		userID, pq.Array(recipeIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}
	return result, nil
}

// CountByUser はユーザーのリレーション件数を返す。
func (r *PostgresRelationRepo) CountByUser(ctx context.Context, kind model.RelationKind, userID string) (int, error) {
	table, err := relationTable(kind)
	if err != nil {
		return 0, err
	}
	if !isUUID(userID) {
		return 0, nil
	}

	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE user_id = $1`, userID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// ListCartLines はユーザーの買い物リストに含まれる全レシピの材料行を返す。
// 集計はサービス層で行う。
func (r *PostgresRelationRepo) ListCartLines(ctx context.Context, userID string) ([]model.IngredientLine, error) {
	if !isUUID(userID) {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT ri.recipe_id, ri.ingredient_id, i.name, i.measurement_unit, ri.amount, ri.note
		 FROM shopping_cart sc
		 JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE sc.user_id = $1
		 ORDER BY i.name ASC, i.measurement_unit ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping cart lines: %w", err)
	}
	defer rows.Close()
	return collectLines(rows)
}

// compile-time interface check
var _ RelationRepository = (*PostgresRelationRepo)(nil)
