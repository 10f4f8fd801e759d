package handler

import (
	"time"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/recipe"
	"github.com/hitoshi/recipebox/internal/subscription"
)

// ingredientResponse は材料のAPIレスポンス。
type ingredientResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// tagResponse はタグのAPIレスポンス。
type tagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// recipeBriefResponse はリレーション追加時や作者カードで返す簡略レシピ。
type recipeBriefResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// authorResponse はフォロー中の作者カードのAPIレスポンス。
type authorResponse struct {
	userResponse
	Recipes      []recipeBriefResponse `json:"recipes"`
	RecipesCount int                   `json:"recipes_count"`
}

// ingredientLineResponse はレシピ詳細に含める材料行。
type ingredientLineResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
	Note            string `json:"note,omitempty"`
}

// recipeResponse はレシピ詳細のAPIレスポンス。
type recipeResponse struct {
	ID               string                   `json:"id"`
	Tags             []tagResponse            `json:"tags"`
	Author           userResponse             `json:"author"`
	Ingredients      []ingredientLineResponse `json:"ingredients"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      int                      `json:"cooking_time"`
	CreatedAt        time.Time                `json:"created_at"`
}

// --- 変換関数 ---

func toIngredientResponse(ing *model.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:              ing.ID,
		Name:            ing.Name,
		MeasurementUnit: ing.MeasurementUnit,
	}
}

func toTagResponse(tag *model.Tag) tagResponse {
	return tagResponse{
		ID:    tag.ID,
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}

func toTagResponses(tags []*model.Tag) []tagResponse {
	results := make([]tagResponse, len(tags))
	for i, tag := range tags {
		results[i] = toTagResponse(tag)
	}
	return results
}

func toUserResponse(p model.Profile) userResponse {
	return userResponse{
		ID:           p.ID,
		Email:        p.Email,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsSubscribed: p.IsSubscribed,
	}
}

func toRecipeBriefResponse(card model.RecipeCard) recipeBriefResponse {
	return recipeBriefResponse{
		ID:          card.ID,
		Name:        card.Name,
		Image:       card.ImageURL,
		CookingTime: card.CookingTime,
	}
}

func toAuthorResponse(a subscription.AuthorWithRecipes) authorResponse {
	recipes := make([]recipeBriefResponse, len(a.Recipes))
	for i, card := range a.Recipes {
		recipes[i] = toRecipeBriefResponse(card)
	}
	return authorResponse{
		userResponse: toUserResponse(a.Profile),
		Recipes:      recipes,
		RecipesCount: a.RecipesCount,
	}
}

func toRecipeResponse(d recipe.Detail) recipeResponse {
	lines := make([]ingredientLineResponse, len(d.Ingredients))
	for i, l := range d.Ingredients {
		lines[i] = ingredientLineResponse{
			ID:              l.IngredientID,
			Name:            l.Name,
			MeasurementUnit: l.MeasurementUnit,
			Amount:          l.Amount,
			Note:            l.Note,
		}
	}
	return recipeResponse{
		ID:               d.ID,
		Tags:             toTagResponses(d.Tags),
		Author:           toUserResponse(d.Author),
		Ingredients:      lines,
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             d.Name,
		Image:            d.ImageURL,
		Text:             d.Description,
		CookingTime:      d.CookingTime,
		CreatedAt:        d.CreatedAt,
	}
}
