package model

import "time"

// Ingredient は材料カタログの1項目。複数のレシピから共有参照される。
type Ingredient struct {
	ID              string
	Name            string
	MeasurementUnit string
}

// Tag はレシピのカテゴリタグ。
type Tag struct {
	ID    string
	Name  string
	Slug  string
	Color string
}

// Recipe は作者1人に属するレシピ本体。
type Recipe struct {
	ID          string
	AuthorID    string
	Name        string
	Description string
	CookingTime int
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient はレシピが所有する材料行（書き込み用）。
// 同一レシピ内で材料IDは重複しない。
type RecipeIngredient struct {
	RecipeID     string
	IngredientID string
	Amount       int
	Note         string
}

// IngredientLine は材料名と単位を解決済みの材料行（読み取り用）。
type IngredientLine struct {
	RecipeID        string
	IngredientID    string
	Name            string
	MeasurementUnit string
	Amount          int
	Note            string
}

// RecipeFilter はレシピ一覧の絞り込み条件。
// FavoritedBy, InCartOfが空でない場合は該当ユーザーのリレーションに含まれるレシピのみを返す。
type RecipeFilter struct {
	AuthorID    string
	TagSlugs    []string
	FavoritedBy string
	InCartOf    string
	Limit       int
	Offset      int
}

// RecipeCard は作者カードに載せる簡略レシピ。
type RecipeCard struct {
	ID          string
	Name        string
	ImageURL    string
	CookingTime int
}

// ToCard はレシピの簡略表現を返す。
func (r *Recipe) ToCard() RecipeCard {
	return RecipeCard{
		ID:          r.ID,
		Name:        r.Name,
		ImageURL:    r.ImageURL,
		CookingTime: r.CookingTime,
	}
}
