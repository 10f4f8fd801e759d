package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/recipebox/internal/model"
)

// PageConfig はページネーションの既定値と上限。
type PageConfig struct {
	BaseURL     string
	DefaultSize int
	MaxSize     int
}

// pageResponse はページングした一覧のAPIレスポンス。
// next, previousは前後のページが無い場合にnullになる。
type pageResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// parsePageRequest はpage, limitクエリを読み取る。
// 不正な値は既定値に、上限を超えるlimitは上限に丸める。
func (c PageConfig) parsePageRequest(r *http.Request) model.PageRequest {
	q := r.URL.Query()

	page := 1
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n >= 1 {
		page = n
	}

	limit := c.DefaultSize
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n >= 1 {
		limit = n
	}
	if c.MaxSize > 0 && limit > c.MaxSize {
		limit = c.MaxSize
	}
	return model.PageRequest{Page: page, Limit: limit}
}

// newPageResponse はページ情報と変換済みの結果から一覧レスポンスを組み立てる。
func newPageResponse[T any](c PageConfig, r *http.Request, req model.PageRequest, total int, results []T) pageResponse[T] {
	if results == nil {
		results = []T{}
	}
	resp := pageResponse[T]{Count: total, Results: results}
	if req.Page*req.Limit < total {
		next := c.pageURL(r, req.Page+1)
		resp.Next = &next
	}
	if req.Page > 1 {
		prev := c.pageURL(r, req.Page-1)
		resp.Previous = &prev
	}
	return resp
}

// pageURL はリクエストのクエリを保ったままpageだけを差し替えたURLを返す。
func (c PageConfig) pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	return c.BaseURL + u.String()
}
