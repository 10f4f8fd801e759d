package model

import "time"

// RelationKind はユーザーとレシピの関係の種別。
type RelationKind string

const (
	// RelationFavorite はお気に入り。
	RelationFavorite RelationKind = "favorite"
	// RelationShoppingCart は買い物リスト。
	RelationShoppingCart RelationKind = "shopping_cart"
)

// ValidRelationKinds は有効なリレーション種別の一覧。
var ValidRelationKinds = []RelationKind{RelationFavorite, RelationShoppingCart}

// IsValid はリレーション種別が有効な値かを判定する。
func (k RelationKind) IsValid() bool {
	for _, v := range ValidRelationKinds {
		if k == v {
			return true
		}
	}
	return false
}

// RelationAttrs は種別固有の追加属性。
// PlannedDateは買い物リストのみが受け付ける。
type RelationAttrs struct {
	PlannedDate *time.Time
}

// Relation は(ユーザー, レシピ)の組。組は種別ごとに一意。
type Relation struct {
	ID        string
	Kind      RelationKind
	UserID    string
	RecipeID  string
	Attrs     RelationAttrs
	CreatedAt time.Time
}
