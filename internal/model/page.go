package model

// PageRequest はページ番号方式のページネーション指定。Pageは1始まり。
type PageRequest struct {
	Page  int
	Limit int
}

// Offset はSQLのOFFSETに渡す値を返す。
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page はページングされた結果と総件数。
type Page[T any] struct {
	Items []T
	Total int
}
