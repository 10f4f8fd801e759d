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

const recipeColumns = `r.id, r.author_id, r.name, r.description, r.cooking_time, r.image_url, r.created_at, r.updated_at`

// PostgresRecipeRepo はPostgreSQLを使用したレシピリポジトリ。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

func scanRecipe(s rowScanner) (*model.Recipe, error) {
	rec := &model.Recipe{}
	err := s.Scan(&rec.ID, &rec.AuthorID, &rec.Name, &rec.Description, &rec.CookingTime,
		&rec.ImageURL, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByID は指定IDのレシピを取得する。見つからない場合はnilを返す。
func (r *PostgresRecipeRepo) FindByID(ctx context.Context, id string) (*model.Recipe, error) {
	if !isUUID(id) {
		return nil, nil
	}
	rec, err := scanRecipe(r.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return rec, nil
}

// buildRecipeFilter はフィルタ条件からWHERE句と引数を組み立てる。
// UUIDとして解釈できないIDが指定された場合はokにfalseを返す（該当なし）。
func buildRecipeFilter(f model.RecipeFilter) (where string, args []any, ok bool) {
	var conds []string
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.AuthorID != "" {
		if !isUUID(f.AuthorID) {
			return "", nil, false
		}
		conds = append(conds, "r.author_id = "+arg(f.AuthorID))
	}
	if len(f.TagSlugs) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(`+arg(pq.Array(f.TagSlugs))+`))`)
	}
	if f.FavoritedBy != "" {
		if !isUUID(f.FavoritedBy) {
			return "", nil, false
		}
		conds = append(conds, `EXISTS (SELECT 1 FROM favorites fv
			WHERE fv.recipe_id = r.id AND fv.user_id = `+arg(f.FavoritedBy)+`)`)
	}
	if f.InCartOf != "" {
		if !isUUID(f.InCartOf) {
			return "", nil, false
		}
		conds = append(conds, `EXISTS (SELECT 1 FROM shopping_cart sc
			WHERE sc.recipe_id = r.id AND sc.user_id = `+arg(f.InCartOf)+`)`)
	}

	if len(conds) == 0 {
		return "", args, true
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

// List はフィルタ条件に一致するレシピを新しい順に返す。
func (r *PostgresRecipeRepo) List(ctx context.Context, filter model.RecipeFilter) ([]*model.Recipe, int, error) {
	where, args, ok := buildRecipeFilter(filter)
	if !ok {
		return nil, 0, nil
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes r`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes r` + where +
		` ORDER BY r.created_at DESC, r.id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListByAuthors は作者ごとの最新レシピを最大limitPerAuthor件ずつ返す。
func (r *PostgresRecipeRepo) ListByAuthors(ctx context.Context, authorIDs []string, limitPerAuthor int) (map[string][]*model.Recipe, error) {
	result := make(map[string][]*model.Recipe)
	authorIDs = validUUIDs(authorIDs)
	if len(authorIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, author_id, name, description, cooking_time, image_url, created_at, updated_at
		 FROM (
		     SELECT `+recipeColumns+`,
		            ROW_NUMBER() OVER (PARTITION BY r.author_id ORDER BY r.created_at DESC, r.id ASC) AS rn
		     FROM recipes r
		     WHERE r.author_id = ANY($1::uuid[])
		 ) ranked
		 WHERE $2::int <= 0 OR rn <= $2::int
		 ORDER BY author_id, rn`,
		pq.Array(authorIDs), limitPerAuthor,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes by authors: %w", err)
	}
	defer rows.Close()

	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, err
	}
	for _, rec := range recipes {
		result[rec.AuthorID] = append(result[rec.AuthorID], rec)
	}
	return result, nil
}

// CountByAuthors は作者ごとのレシピ数を返す。
func (r *PostgresRecipeRepo) CountByAuthors(ctx context.Context, authorIDs []string) (map[string]int, error) {
	result := make(map[string]int)
	authorIDs = validUUIDs(authorIDs)
	if len(authorIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT author_id, COUNT(*) FROM recipes
		 WHERE author_id = ANY($1::uuid[])
		 GROUP BY author_id`,
		pq.Array(authorIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes by authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var authorID string
		var count int
		if err := rows.Scan(&authorID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan recipe count row: %w", err)
		}
		result[authorID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipe count rows: %w", err)
	}
	return result, nil
}

// Create はレシピ本体、材料行、タグの紐付けを1トランザクションで作成する。
func (r *PostgresRecipeRepo) Create(ctx context.Context, recipe *model.Recipe, lines []model.RecipeIngredient, tagIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipes (id, author_id, name, description, cooking_time, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		recipe.ID, recipe.AuthorID, recipe.Name, recipe.Description, recipe.CookingTime,
		recipe.ImageURL, recipe.CreatedAt, recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	if err := insertLines(ctx, tx, recipe.ID, lines); err != nil {
		return err
	}
	if err := insertTags(ctx, tx, recipe.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update はレシピ本体を更新し、材料行とタグの紐付けを全置換する。
// 旧材料行の削除と新材料行の挿入は同一トランザクション内で行うため、
// 挿入に失敗した場合は削除も取り消される。
func (r *PostgresRecipeRepo) Update(ctx context.Context, recipe *model.Recipe, lines []model.RecipeIngredient, tagIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE recipes
		 SET name = $2, description = $3, cooking_time = $4, image_url = $5, updated_at = $6
		 WHERE id = $1`,
		recipe.ID, recipe.Name, recipe.Description, recipe.CookingTime, recipe.ImageURL, recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("recipe not found: %s", recipe.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID,
	); err != nil {
		return fmt.Errorf("failed to delete recipe ingredients: %w", err)
	}
	if err := insertLines(ctx, tx, recipe.ID, lines); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recipe_tags WHERE recipe_id = $1`, recipe.ID,
	); err != nil {
		return fmt.Errorf("failed to delete recipe tags: %w", err)
	}
	if err := insertTags(ctx, tx, recipe.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete は指定IDのレシピを削除する。
func (r *PostgresRecipeRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("recipe not found: %s", id)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("recipe not found: %s", id)
	}
	return nil
}

// ListLines はレシピIDごとの材料行を材料名順に返す。
func (r *PostgresRecipeRepo) ListLines(ctx context.Context, recipeIDs []string) (map[string][]model.IngredientLine, error) {
	result := make(map[string][]model.IngredientLine)
	recipeIDs = validUUIDs(recipeIDs)
	if len(recipeIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ri.recipe_id, ri.ingredient_id, i.name, i.measurement_unit, ri.amount, ri.note
		 FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id = ANY($1::uuid[])
		 ORDER BY i.name ASC, i.measurement_unit ASC`,
		pq.Array(recipeIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe ingredients: %w", err)
	}
	defer rows.Close()

	lines, err := collectLines(rows)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		result[l.RecipeID] = append(result[l.RecipeID], l)
	}
	return result, nil
}

// insertLines は材料行を1文の複数VALUESで挿入する。
func insertLines(ctx context.Context, tx *sql.Tx, recipeID string, lines []model.RecipeIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, note) VALUES `)
	args := make([]any, 0, len(lines)*4)
	for i, l := range lines {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, recipeID, l.IngredientID, l.Amount, l.Note)
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("failed to insert recipe ingredients: %w", err)
	}
	return nil
}

// insertTags はタグの紐付けを挿入する。
func insertTags(ctx context.Context, tx *sql.Tx, recipeID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO recipe_tags (recipe_id, tag_id)
		 SELECT $1, unnest($2::uuid[])
		 ON CONFLICT DO NOTHING`,
		recipeID, pq.Array(tagIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recipe tags: %w", err)
	}
	return nil
}

func collectRecipes(rows *sql.Rows) ([]*model.Recipe, error) {
	var recipes []*model.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipe rows: %w", err)
	}
	return recipes, nil
}

func collectLines(rows *sql.Rows) ([]model.IngredientLine, error) {
	var lines []model.IngredientLine
	for rows.Next() {
		var l model.IngredientLine
		if err := rows.Scan(&l.RecipeID, &l.IngredientID, &l.Name, &l.MeasurementUnit, &l.Amount, &l.Note); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredient line rows: %w", err)
	}
	return lines, nil
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)
