// Package repotest はサービス層のテストで使うリポジトリのモックを提供する。
// 各メソッドは対応するFnフィールドが未設定の場合ゼロ値を返す。
package repotest

import (
	"context"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/repository"
)

// --- UserRepository ---

type UserRepo struct {
	FindByIDFn       func(ctx context.Context, id string) (*model.User, error)
	FindByIDsFn      func(ctx context.Context, ids []string) ([]*model.User, error)
	FindByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	FindByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	CreateFn         func(ctx context.Context, user *model.User) error
	ListFn           func(ctx context.Context, limit, offset int) ([]*model.User, int, error)
	DeleteByIDFn     func(ctx context.Context, id string) error
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (m *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if m.FindByIDsFn != nil {
		return m.FindByIDsFn(ctx, ids)
	}
	return nil, nil
}
func (m *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.FindByEmailFn != nil {
		return m.FindByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.FindByUsernameFn != nil {
		return m.FindByUsernameFn(ctx, username)
	}
	return nil, nil
}
func (m *UserRepo) Create(ctx context.Context, user *model.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}
func (m *UserRepo) List(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit, offset)
	}
	return nil, 0, nil
}
func (m *UserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.DeleteByIDFn != nil {
		return m.DeleteByIDFn(ctx, id)
	}
	return nil
}

// --- SessionRepository ---

type SessionRepo struct {
	FindByIDFn       func(ctx context.Context, id string) (*model.Session, error)
	DeleteByUserIDFn func(ctx context.Context, userID string) error
}

var _ repository.SessionRepository = (*SessionRepo)(nil)

func (m *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *SessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.DeleteByUserIDFn != nil {
		return m.DeleteByUserIDFn(ctx, userID)
	}
	return nil
}

// --- IngredientRepository ---

type IngredientRepo struct {
	SearchByPrefixFn  func(ctx context.Context, prefix string, limit int) ([]*model.Ingredient, error)
	FindByIDFn        func(ctx context.Context, id string) (*model.Ingredient, error)
	FindExistingIDsFn func(ctx context.Context, ids []string) ([]string, error)
}

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

func (m *IngredientRepo) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*model.Ingredient, error) {
	if m.SearchByPrefixFn != nil {
		return m.SearchByPrefixFn(ctx, prefix, limit)
	}
	return []*model.Ingredient{}, nil
}
func (m *IngredientRepo) FindByID(ctx context.Context, id string) (*model.Ingredient, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *IngredientRepo) FindExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if m.FindExistingIDsFn != nil {
		return m.FindExistingIDsFn(ctx, ids)
	}
	return ids, nil
}

// --- TagRepository ---

type TagRepo struct {
	ListFn            func(ctx context.Context) ([]*model.Tag, error)
	FindByIDFn        func(ctx context.Context, id string) (*model.Tag, error)
	FindExistingIDsFn func(ctx context.Context, ids []string) ([]string, error)
	ListByRecipeIDsFn func(ctx context.Context, recipeIDs []string) (map[string][]*model.Tag, error)
}

var _ repository.TagRepository = (*TagRepo)(nil)

func (m *TagRepo) List(ctx context.Context) ([]*model.Tag, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return []*model.Tag{}, nil
}
func (m *TagRepo) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *TagRepo) FindExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if m.FindExistingIDsFn != nil {
		return m.FindExistingIDsFn(ctx, ids)
	}
	return ids, nil
}
func (m *TagRepo) ListByRecipeIDs(ctx context.Context, recipeIDs []string) (map[string][]*model.Tag, error) {
	if m.ListByRecipeIDsFn != nil {
		return m.ListByRecipeIDsFn(ctx, recipeIDs)
	}
	return map[string][]*model.Tag{}, nil
}

// --- RecipeRepository ---

type RecipeRepo struct {
	FindByIDFn       func(ctx context.Context, id string) (*model.Recipe, error)
	ListFn           func(ctx context.Context, filter model.RecipeFilter) ([]*model.Recipe, int, error)
	ListByAuthorsFn  func(ctx context.Context, authorIDs []string, limitPerAuthor int) (map[string][]*model.Recipe, error)
	CountByAuthorsFn func(ctx context.Context, authorIDs []string) (map[string]int, error)
	CreateFn         func(ctx context.Context, recipe *model.Recipe, lines []model.RecipeIngredient, tagIDs []string) error
	UpdateFn         func(ctx context.Context, recipe *model.Recipe, lines []model.RecipeIngredient, tagIDs []string) error
	DeleteFn         func(ctx context.Context, id string) error
	ListLinesFn      func(ctx context.Context, recipeIDs []string) (map[string][]model.IngredientLine, error)
}

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

func (m *RecipeRepo) FindByID(ctx context.Context, id string) (*model.Recipe, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *RecipeRepo) List(ctx context.Context, filter model.RecipeFilter) ([]*model.Recipe, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}
func (m *RecipeRepo) ListByAuthors(ctx context.Context, authorIDs []string, limitPerAuthor int) (map[string][]*model.Recipe, error) {
	if m.ListByAuthorsFn != nil {
		return m.ListByAuthorsFn(ctx, authorIDs, limitPerAuthor)
	}
	return map[string][]*model.Recipe{}, nil
}
func (m *RecipeRepo) CountByAuthors(ctx context.Context, authorIDs []string) (map[string]int, error) {
	if m.CountByAuthorsFn != nil {
		return m.CountByAuthorsFn(ctx, authorIDs)
	}
	return map[string]int{}, nil
}
func (m *RecipeRepo) Create(ctx context.Context, recipe *model.Recipe, lines []model.RecipeIngredient, tagIDs []string) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, recipe, lines, tagIDs)
	}
	return nil
}
func (m *RecipeRepo) Update(ctx context.Context, recipe *model.Recipe, lines []model.RecipeIngredient, tagIDs []string) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, recipe, lines, tagIDs)
	}
	return nil
}
func (m *RecipeRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
func (m *RecipeRepo) ListLines(ctx context.Context, recipeIDs []string) (map[string][]model.IngredientLine, error) {
	if m.ListLinesFn != nil {
		return m.ListLinesFn(ctx, recipeIDs)
	}
	return map[string][]model.IngredientLine{}, nil
}

// --- RelationRepository ---

type RelationRepo struct {
	AddFn               func(ctx context.Context, rel *model.Relation) error
	RemoveFn            func(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error)
	ExistsFn            func(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error)
	ExistingRecipeIDsFn func(ctx context.Context, kind model.RelationKind, userID string, recipeIDs []string) (map[string]bool, error)
	CountByUserFn       func(ctx context.Context, kind model.RelationKind, userID string) (int, error)
	ListCartLinesFn     func(ctx context.Context, userID string) ([]model.IngredientLine, error)
}

var _ repository.RelationRepository = (*RelationRepo)(nil)

func (m *RelationRepo) Add(ctx context.Context, rel *model.Relation) error {
	if m.AddFn != nil {
		return m.AddFn(ctx, rel)
	}
	return nil
}
func (m *RelationRepo) Remove(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error) {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, kind, userID, recipeID)
	}
	return true, nil
}
func (m *RelationRepo) Exists(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, kind, userID, recipeID)
	}
	return false, nil
}
func (m *RelationRepo) ExistingRecipeIDs(ctx context.Context, kind model.RelationKind, userID string, recipeIDs []string) (map[string]bool, error) {
	if m.ExistingRecipeIDsFn != nil {
		return m.ExistingRecipeIDsFn(ctx, kind, userID, recipeIDs)
	}
	return map[string]bool{}, nil
}
func (m *RelationRepo) CountByUser(ctx context.Context, kind model.RelationKind, userID string) (int, error) {
	if m.CountByUserFn != nil {
		return m.CountByUserFn(ctx, kind, userID)
	}
	return 0, nil
}
func (m *RelationRepo) ListCartLines(ctx context.Context, userID string) ([]model.IngredientLine, error) {
	if m.ListCartLinesFn != nil {
		return m.ListCartLinesFn(ctx, userID)
	}
	return nil, nil
}

// --- SubscriptionRepository ---

type SubscriptionRepo struct {
	CreateFn                func(ctx context.Context, sub *model.Subscription) error
	DeleteFn                func(ctx context.Context, followerID, authorID string) (bool, error)
	ExistsFn                func(ctx context.Context, followerID, authorID string) (bool, error)
	ExistingAuthorIDsFn     func(ctx context.Context, followerID string, authorIDs []string) (map[string]bool, error)
	ListAuthorsByFollowerFn func(ctx context.Context, followerID string, limit, offset int) ([]*model.User, int, error)
}

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

func (m *SubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, sub)
	}
	return nil
}
func (m *SubscriptionRepo) Delete(ctx context.Context, followerID, authorID string) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, followerID, authorID)
	}
	return true, nil
}
func (m *SubscriptionRepo) Exists(ctx context.Context, followerID, authorID string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, followerID, authorID)
	}
	return false, nil
}
func (m *SubscriptionRepo) ExistingAuthorIDs(ctx context.Context, followerID string, authorIDs []string) (map[string]bool, error) {
	if m.ExistingAuthorIDsFn != nil {
		return m.ExistingAuthorIDsFn(ctx, followerID, authorIDs)
	}
	return map[string]bool{}, nil
}
func (m *SubscriptionRepo) ListAuthorsByFollower(ctx context.Context, followerID string, limit, offset int) ([]*model.User, int, error) {
	if m.ListAuthorsByFollowerFn != nil {
		return m.ListAuthorsByFollowerFn(ctx, followerID, limit, offset)
	}
	return nil, 0, nil
}
