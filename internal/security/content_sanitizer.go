// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はユーザーが入力したレシピのテキストをサニタイズし、
// XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はレシピのテキスト項目のサニタイズ機能のインターフェースを定義する。
// レシピの作成・更新時、保存前に使用される。
type ContentSanitizerService interface {
	// SanitizeName は全てのHTMLタグを除去したプレーンテキストを返す。
	// 前後の空白は取り除く。
	SanitizeName(raw string) string

	// SanitizeDescription は許可タグ（p, br, a, ul, ol, li, strong, em）のみを通過させる。
	// aタグのhrefはhttpsスキームのみ許可され、target="_blank"とrelが自動付与される。
	SanitizeDescription(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフなため、1インスタンスを共有する。
type contentSanitizer struct {
	namePolicy        *bluemonday.Policy
	descriptionPolicy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	// script, iframe, style等は許可リストに含めないことで除去される
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("https")
	p.AllowRelativeURLs(false)
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		namePolicy:        bluemonday.StrictPolicy(),
		descriptionPolicy: p,
	}
}

// SanitizeName はタグを除去し、エスケープされた文字を元に戻したプレーンテキストを返す。
// 名前はJSONの文字列として返すため、HTMLエスケープは不要。
func (s *contentSanitizer) SanitizeName(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.namePolicy.Sanitize(raw)))
}

// SanitizeDescription は許可タグのみを残したHTMLを返す。
func (s *contentSanitizer) SanitizeDescription(raw string) string {
	return strings.TrimSpace(s.descriptionPolicy.Sanitize(raw))
}
