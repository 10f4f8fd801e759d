package handler

import (
	"context"

	"github.com/hitoshi/recipebox/internal/catalog"
	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/recipe"
	"github.com/hitoshi/recipebox/internal/relation"
	"github.com/hitoshi/recipebox/internal/shoppinglist"
	"github.com/hitoshi/recipebox/internal/subscription"
	"github.com/hitoshi/recipebox/internal/user"
)

// CatalogServiceAdapter は catalog.Service を CatalogServiceInterface に適合させるアダプタ。
type CatalogServiceAdapter struct {
	svc *catalog.Service
}

// NewCatalogServiceAdapter はCatalogServiceAdapterを生成する。
func NewCatalogServiceAdapter(svc *catalog.Service) *CatalogServiceAdapter {
	return &CatalogServiceAdapter{svc: svc}
}

// SearchIngredients は名前の前方一致で材料を検索しhandlerレスポンス型で返す。
func (a *CatalogServiceAdapter) SearchIngredients(ctx context.Context, prefix string) ([]ingredientResponse, error) {
	ingredients, err := a.svc.SearchIngredients(ctx, prefix)
	if err != nil {
		return nil, err
	}
	results := make([]ingredientResponse, len(ingredients))
	for i, ing := range ingredients {
		results[i] = toIngredientResponse(ing)
	}
	return results, nil
}

// GetIngredient は材料を1件返す。
func (a *CatalogServiceAdapter) GetIngredient(ctx context.Context, id string) (*ingredientResponse, error) {
	ing, err := a.svc.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toIngredientResponse(ing)
	return &resp, nil
}

// ListTags は全タグを返す。
func (a *CatalogServiceAdapter) ListTags(ctx context.Context) ([]tagResponse, error) {
	tags, err := a.svc.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return toTagResponses(tags), nil
}

// GetTag はタグを1件返す。
func (a *CatalogServiceAdapter) GetTag(ctx context.Context, id string) (*tagResponse, error) {
	tag, err := a.svc.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTagResponse(tag)
	return &resp, nil
}

// UserServiceAdapter は user.Service を UserServiceInterface に適合させるアダプタ。
type UserServiceAdapter struct {
	svc *user.Service
}

// NewUserServiceAdapter はUserServiceAdapterを生成する。
func NewUserServiceAdapter(svc *user.Service) *UserServiceAdapter {
	return &UserServiceAdapter{svc: svc}
}

// Register はユーザーを登録する。登録直後のユーザーは誰にもフォローされていない。
func (a *UserServiceAdapter) Register(ctx context.Context, req registerRequest) (*userResponse, error) {
	u, err := a.svc.Register(ctx, user.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u.ToProfile(false))
	return &resp, nil
}

// Profile は閲覧者から見たユーザー情報を返す。
func (a *UserServiceAdapter) Profile(ctx context.Context, viewerID, userID string) (*userResponse, error) {
	p, err := a.svc.Profile(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(*p)
	return &resp, nil
}

// List はユーザー一覧と総件数を返す。
func (a *UserServiceAdapter) List(ctx context.Context, viewerID string, page model.PageRequest) ([]userResponse, int, error) {
	result, err := a.svc.List(ctx, viewerID, page)
	if err != nil {
		return nil, 0, err
	}
	users := make([]userResponse, len(result.Items))
	for i, p := range result.Items {
		users[i] = toUserResponse(p)
	}
	return users, result.Total, nil
}

// Withdraw はユーザーの退会処理を実行する。
func (a *UserServiceAdapter) Withdraw(ctx context.Context, userID string) error {
	return a.svc.Withdraw(ctx, userID)
}

// SubscriptionServiceAdapter は subscription.Service を SubscriptionServiceInterface に適合させるアダプタ。
type SubscriptionServiceAdapter struct {
	svc *subscription.Service
}

// NewSubscriptionServiceAdapter はSubscriptionServiceAdapterを生成する。
func NewSubscriptionServiceAdapter(svc *subscription.Service) *SubscriptionServiceAdapter {
	return &SubscriptionServiceAdapter{svc: svc}
}

// ListFollowed はフォロー中の作者カード一覧と総件数を返す。
func (a *SubscriptionServiceAdapter) ListFollowed(ctx context.Context, userID string, recipesLimit int, page model.PageRequest) ([]authorResponse, int, error) {
	result, err := a.svc.ListFollowed(ctx, userID, recipesLimit, page)
	if err != nil {
		return nil, 0, err
	}
	authors := make([]authorResponse, len(result.Items))
	for i, item := range result.Items {
		authors[i] = toAuthorResponse(item)
	}
	return authors, result.Total, nil
}

// Subscribe は作者をフォローし、作者カードを返す。
func (a *SubscriptionServiceAdapter) Subscribe(ctx context.Context, followerID, authorID string, recipesLimit int) (*authorResponse, error) {
	card, err := a.svc.Subscribe(ctx, followerID, authorID, recipesLimit)
	if err != nil {
		return nil, err
	}
	resp := toAuthorResponse(*card)
	return &resp, nil
}

// Unsubscribe はフォローを解除する。
func (a *SubscriptionServiceAdapter) Unsubscribe(ctx context.Context, followerID, authorID string) error {
	return a.svc.Unsubscribe(ctx, followerID, authorID)
}

// RecipeServiceAdapter は recipe.Service を RecipeServiceInterface に適合させるアダプタ。
type RecipeServiceAdapter struct {
	svc *recipe.Service
}

// NewRecipeServiceAdapter はRecipeServiceAdapterを生成する。
func NewRecipeServiceAdapter(svc *recipe.Service) *RecipeServiceAdapter {
	return &RecipeServiceAdapter{svc: svc}
}

// List はレシピ一覧と総件数を返す。
func (a *RecipeServiceAdapter) List(ctx context.Context, viewerID string, filter recipe.Filter, page model.PageRequest) ([]recipeResponse, int, error) {
	result, err := a.svc.List(ctx, viewerID, filter, page)
	if err != nil {
		return nil, 0, err
	}
	recipes := make([]recipeResponse, len(result.Items))
	for i, d := range result.Items {
		recipes[i] = toRecipeResponse(d)
	}
	return recipes, result.Total, nil
}

// Get はレシピ詳細を返す。
func (a *RecipeServiceAdapter) Get(ctx context.Context, viewerID, recipeID string) (*recipeResponse, error) {
	return a.wrap(a.svc.Get(ctx, viewerID, recipeID))
}

// Create はレシピを作成する。
func (a *RecipeServiceAdapter) Create(ctx context.Context, actorID string, in recipe.Input) (*recipeResponse, error) {
	return a.wrap(a.svc.Create(ctx, actorID, in))
}

// Update はレシピを更新する。
func (a *RecipeServiceAdapter) Update(ctx context.Context, actorID, recipeID string, in recipe.Input) (*recipeResponse, error) {
	return a.wrap(a.svc.Update(ctx, actorID, recipeID, in))
}

// Delete はレシピを削除する。
func (a *RecipeServiceAdapter) Delete(ctx context.Context, actorID, recipeID string) error {
	return a.svc.Delete(ctx, actorID, recipeID)
}

// ShareLink はレシピの共有用URLを返す。
func (a *RecipeServiceAdapter) ShareLink(ctx context.Context, recipeID string) (string, error) {
	return a.svc.ShareLink(ctx, recipeID)
}

func (a *RecipeServiceAdapter) wrap(d *recipe.Detail, err error) (*recipeResponse, error) {
	if err != nil {
		return nil, err
	}
	resp := toRecipeResponse(*d)
	return &resp, nil
}

// RelationServiceAdapter は relation.Service を RelationServiceInterface に適合させるアダプタ。
type RelationServiceAdapter struct {
	svc *relation.Service
}

// NewRelationServiceAdapter はRelationServiceAdapterを生成する。
func NewRelationServiceAdapter(svc *relation.Service) *RelationServiceAdapter {
	return &RelationServiceAdapter{svc: svc}
}

// Add はレシピをリレーションに追加し、簡略表現を返す。
func (a *RelationServiceAdapter) Add(ctx context.Context, kind model.RelationKind, userID, recipeID string, attrs model.RelationAttrs) (*recipeBriefResponse, error) {
	card, err := a.svc.Add(ctx, kind, userID, recipeID, attrs)
	if err != nil {
		return nil, err
	}
	resp := toRecipeBriefResponse(*card)
	return &resp, nil
}

// Remove はレシピをリレーションから外す。
func (a *RelationServiceAdapter) Remove(ctx context.Context, kind model.RelationKind, userID, recipeID string) error {
	return a.svc.Remove(ctx, kind, userID, recipeID)
}

// ShoppingListServiceAdapter は shoppinglist.Service を ShoppingListServiceInterface に適合させるアダプタ。
type ShoppingListServiceAdapter struct {
	svc *shoppinglist.Service
}

// NewShoppingListServiceAdapter はShoppingListServiceAdapterを生成する。
func NewShoppingListServiceAdapter(svc *shoppinglist.Service) *ShoppingListServiceAdapter {
	return &ShoppingListServiceAdapter{svc: svc}
}

// Download は買い物リストをテキストで返す。
func (a *ShoppingListServiceAdapter) Download(ctx context.Context, userID string) (string, error) {
	report, err := a.svc.Build(ctx, userID)
	if err != nil {
		return "", err
	}
	return report.Text(), nil
}
