package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/lib/pq"
)

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

// List は全タグを名前順に返す。
func (r *PostgresTagRepo) List(ctx context.Context) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, color FROM tags ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []*model.Tag{}
	for rows.Next() {
		tag := &model.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Color); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag rows: %w", err)
	}
	return tags, nil
}

// FindByID は指定IDのタグを取得する。見つからない場合はnilを返す。
func (r *PostgresTagRepo) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	if !isUUID(id) {
		return nil, nil
	}
	tag := &model.Tag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, color FROM tags WHERE id = $1`,
		id,
	).Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Color)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return tag, nil
}

// FindExistingIDs は指定IDのうち存在するものを返す。
func (r *PostgresTagRepo) FindExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	return findExistingIDs(ctx, r.db, "tags", ids)
}

// ListByRecipeIDs はレシピIDごとのタグ一覧を返す。
func (r *PostgresTagRepo) ListByRecipeIDs(ctx context.Context, recipeIDs []string) (map[string][]*model.Tag, error) {
	result := make(map[string][]*model.Tag)
	recipeIDs = validUUIDs(recipeIDs)
	if len(recipeIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT rt.recipe_id, t.id, t.name, t.slug, t.color
		 FROM recipe_tags rt
		 JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id = ANY($1::uuid[])
		 ORDER BY t.name ASC`,
		pq.Array(recipeIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		tag := &model.Tag{}
		if err := rows.Scan(&recipeID, &tag.ID, &tag.Name, &tag.Slug, &tag.Color); err != nil {
			return nil, fmt.Errorf("failed to scan recipe tag row: %w", err)
		}
		result[recipeID] = append(result[recipeID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipe tag rows: %w", err)
	}
	return result, nil
}

// compile-time interface check
var _ TagRepository = (*PostgresTagRepo)(nil)
