package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/lib/pq"
)

// PostgresSubscriptionRepo はPostgreSQLを使用したフォロー関係リポジトリ。
type PostgresSubscriptionRepo struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepo はPostgresSubscriptionRepoを生成する。
func NewPostgresSubscriptionRepo(db *sql.DB) *PostgresSubscriptionRepo {
	return &PostgresSubscriptionRepo{db: db}
}

// Create はフォロー関係を作成する。
func (r *PostgresSubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, follower_id, author_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.FollowerID, sub.AuthorID, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("フォロー関係の作成に失敗しました: %w", translateError(err))
	}
	return nil
}

// Delete はフォロー関係を削除する。削除対象が存在しなかった場合はfalseを返す。
func (r *PostgresSubscriptionRepo) Delete(ctx context.Context, followerID, authorID string) (bool, error) {
	if !isUUID(followerID) || !isUUID(authorID) {
		return false, nil
	}
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE follower_id = $1 AND author_id = $2`,
		followerID, authorID,
	)
	if err != nil {
		return false, fmt.Errorf("フォロー関係の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// Exists はフォロー関係が存在するかを返す。
func (r *PostgresSubscriptionRepo) Exists(ctx context.Context, followerID, authorID string) (bool, error) {
	if !isUUID(followerID) || !isUUID(authorID) {
		return false, nil
	}
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE follower_id = $1 AND author_id = $2)`,
		followerID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("フォロー関係の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ExistingAuthorIDs は指定作者のうちフォロー済みのものを返す。
func (r *PostgresSubscriptionRepo) ExistingAuthorIDs(ctx context.Context, followerID string, authorIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	authorIDs = validUUIDs(authorIDs)
	if !isUUID(followerID) || len(authorIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT author_id FROM subscriptions WHERE follower_id = $1 AND author_id = ANY($2::uuid[])`,
		followerID, pq.Array(authorIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("フォロー関係の一括確認に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("フォロー関係行の読み取りに失敗しました: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー関係の走査に失敗しました: %w", err)
	}
	return result, nil
}

// ListAuthorsByFollower はフォロー中の作者を新しくフォローした順に返す。
func (r *PostgresSubscriptionRepo) ListAuthorsByFollower(ctx context.Context, followerID string, limit, offset int) ([]*model.User, int, error) {
	if !isUUID(followerID) {
		return nil, 0, nil
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE follower_id = $1`, followerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("フォロー数の取得に失敗しました: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.created_at, u.updated_at
		 FROM subscriptions s
		 JOIN users u ON u.id = s.author_id
		 WHERE s.follower_id = $1
		 ORDER BY s.created_at DESC, u.id ASC
		 LIMIT $2 OFFSET $3`,
		followerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("フォロー中の作者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// compile-time interface check
var _ SubscriptionRepository = (*PostgresSubscriptionRepo)(nil)
