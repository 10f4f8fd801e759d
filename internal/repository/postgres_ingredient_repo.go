package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/lib/pq"
)

// LIKEパターンのメタ文字をエスケープする。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresIngredientRepo はPostgreSQLを使用した材料カタログリポジトリ。
type PostgresIngredientRepo struct {
	db *sql.DB
}

// NewPostgresIngredientRepo はPostgresIngredientRepoを生成する。
func NewPostgresIngredientRepo(db *sql.DB) *PostgresIngredientRepo {
	return &PostgresIngredientRepo{db: db}
}

// SearchByPrefix は名前の前方一致で材料を名前順に返す。
func (r *PostgresIngredientRepo) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*model.Ingredient, error) {
	query := `SELECT id, name, measurement_unit FROM ingredients
		 WHERE name ILIKE $1 ESCAPE '\'
		 ORDER BY name ASC, measurement_unit ASC`
	args := []any{likeEscaper.Replace(prefix) + "%"}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []*model.Ingredient{}
	for rows.Next() {
		ing := &model.Ingredient{}
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient row: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredient rows: %w", err)
	}
	return ingredients, nil
}

// FindByID は指定IDの材料を取得する。見つからない場合はnilを返す。
func (r *PostgresIngredientRepo) FindByID(ctx context.Context, id string) (*model.Ingredient, error) {
	if !isUUID(id) {
		return nil, nil
	}
	ing := &model.Ingredient{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`,
		id,
	).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ingredient: %w", err)
	}
	return ing, nil
}

// FindExistingIDs は指定IDのうちカタログに存在するものを1回のクエリで返す。
// UUIDとして解釈できないIDは存在しないものとして扱う。
func (r *PostgresIngredientRepo) FindExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	return findExistingIDs(ctx, r.db, "ingredients", ids)
}

// findExistingIDs はtableに存在するIDを返す。tableは定数のみを渡すこと。
func findExistingIDs(ctx context.Context, db *sql.DB, table string, ids []string) ([]string, error) {
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE id = ANY($1::uuid[])`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", table, err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", table, err)
		}
		found = append(found, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s ids: %w", table, err)
	}
	return found, nil
}

// compile-time interface check
var _ IngredientRepository = (*PostgresIngredientRepo)(nil)
