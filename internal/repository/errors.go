package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicate は一意制約違反を表す。サービス層はerrors.Isで判定してドメインエラーに変換する。
var ErrDuplicate = errors.New("duplicate key")

// ErrReferenceMissing は外部キー違反（参照先の行が存在しない）を表す。
// 存在確認の後に参照先が削除された場合に発生する。
var ErrReferenceMissing = errors.New("referenced row does not exist")

// ErrCheckViolation はCHECK制約違反を表す。
var ErrCheckViolation = errors.New("check constraint violated")

// PostgreSQLのエラーコード
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// DuplicateError は違反した制約名を保持する一意制約違反エラー。
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key violates %s: %v", e.Constraint, e.Err)
}

// Is はErrDuplicateとの比較を可能にする。
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// ConstraintError は一意制約以外の制約違反。Kindはerrors.Isの比較対象になる。
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
}

// Is はKindとの比較を可能にする。
func (e *ConstraintError) Is(target error) bool {
	return target == e.Kind
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// translateError はドライバのエラーをリポジトリのエラーに変換する。
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case uniqueViolation:
		return &DuplicateError{Constraint: pqErr.Constraint, Err: err}
	case foreignKeyViolation:
		return &ConstraintError{Kind: ErrReferenceMissing, Constraint: pqErr.Constraint, Err: err}
	case checkViolation:
		return &ConstraintError{Kind: ErrCheckViolation, Constraint: pqErr.Constraint, Err: err}
	}
	return err
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// isUUID はUUIDカラムに渡せる文字列かを判定する。
// 不正な値をそのまま渡すとPostgreSQLが構文エラーを返すため、検索前に除外する。
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// validUUIDs はUUIDとして解釈できる値のみを重複なく返す。
func validUUIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || !isUUID(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
