package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/repository"
	"github.com/hitoshi/recipebox/internal/security"
)

// WriteRecorder はレシピの書き込みを記録するインターフェース。
type WriteRecorder interface {
	RecordRecipeWrite(op string)
}

// RelationChecker は閲覧者のお気に入り・買い物リスト状態をまとめて返す。
// relation.Serviceが実装する。
type RelationChecker interface {
	ExistsMany(ctx context.Context, kind model.RelationKind, userID string, recipeIDs []string) (map[string]bool, error)
}

// Deps はServiceの依存関係。
type Deps struct {
	Recipes       repository.RecipeRepository
	Ingredients   repository.IngredientRepository
	Tags          repository.TagRepository
	Users         repository.UserRepository
	Subscriptions repository.SubscriptionRepository
	Relations     RelationChecker
	Sanitizer     security.ContentSanitizerService
	Images        security.ImageReferenceChecker
	// BaseURL は共有リンクの生成に使う公開URL（末尾スラッシュなし）。
	BaseURL string
}

// Service はレシピ集約のサービス層。
type Service struct {
	recipes       repository.RecipeRepository
	ingredients   repository.IngredientRepository
	tags          repository.TagRepository
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	relations     RelationChecker
	sanitizer     security.ContentSanitizerService
	images        security.ImageReferenceChecker
	baseURL       string
	recorder      WriteRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(deps Deps) *Service {
	return &Service{
		recipes:       deps.Recipes,
		ingredients:   deps.Ingredients,
		tags:          deps.Tags,
		users:         deps.Users,
		subscriptions: deps.Subscriptions,
		relations:     deps.Relations,
		sanitizer:     deps.Sanitizer,
		images:        deps.Images,
		baseURL:       deps.BaseURL,
	}
}

// SetRecorder はレシピの書き込みを記録するレコーダーを設定する。
func (s *Service) SetRecorder(r WriteRecorder) {
	s.recorder = r
}

func (s *Service) record(op string) {
	if s.recorder != nil {
		s.recorder.RecordRecipeWrite(op)
	}
}

// Filter はレシピ一覧の絞り込み条件。
// IsFavorited, IsInShoppingCartは閲覧者のリレーションで絞り込み、匿名閲覧者の場合は無視する。
type Filter struct {
	AuthorID         string
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// Create はレシピを作成する。作者は常に操作ユーザーになる。
// レシピ本体、材料行、タグの紐付けは1トランザクションで書き込む。
func (s *Service) Create(ctx context.Context, actorID string, in Input) (*Detail, error) {
	w, err := s.toWriteModel(ctx, in, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	recipe := &model.Recipe{
		ID:        uuid.New().String(),
		AuthorID:  actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	w.applyTo(recipe)
	lines := withRecipeID(w.lines, recipe.ID)

	if err := s.recipes.Create(ctx, recipe, lines, w.tagIDs); err != nil {
		return nil, fmt.Errorf("レシピの作成に失敗しました: %w", err)
	}

	s.record("create")
	slog.Info("レシピを作成しました",
		slog.String("user_id", actorID),
		slog.String("recipe_id", recipe.ID),
		slog.Int("ingredients", len(lines)),
	)

	return s.detail(ctx, actorID, recipe)
}

// Update はレシピを更新する。作者以外は検証より前にPERMISSION_DENIEDで拒否する。
// 材料行は常に全置換し、省略した属性は現在の値を残す。
func (s *Service) Update(ctx context.Context, actorID, recipeID string, in Input) (*Detail, error) {
	recipe, err := s.findOwned(ctx, actorID, recipeID)
	if err != nil {
		return nil, err
	}

	w, err := s.toWriteModel(ctx, in, false)
	if err != nil {
		return nil, err
	}

	tagIDs := w.tagIDs
	if !w.tagsSet {
		current, err := s.tags.ListByRecipeIDs(ctx, []string{recipe.ID})
		if err != nil {
			return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
		}
		for _, t := range current[recipe.ID] {
			tagIDs = append(tagIDs, t.ID)
		}
	}

	w.applyTo(recipe)
	recipe.UpdatedAt = time.Now()
	lines := withRecipeID(w.lines, recipe.ID)

	if err := s.recipes.Update(ctx, recipe, lines, tagIDs); err != nil {
		return nil, fmt.Errorf("レシピの更新に失敗しました: %w", err)
	}

	s.record("update")
	slog.Info("レシピを更新しました",
		slog.String("user_id", actorID),
		slog.String("recipe_id", recipe.ID),
		slog.Int("ingredients", len(lines)),
	)

	return s.detail(ctx, actorID, recipe)
}

// Delete はレシピを削除する。材料行、タグの紐付け、リレーションはCASCADE削除される。
func (s *Service) Delete(ctx context.Context, actorID, recipeID string) error {
	recipe, err := s.findOwned(ctx, actorID, recipeID)
	if err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, recipe.ID); err != nil {
		return fmt.Errorf("レシピの削除に失敗しました: %w", err)
	}

	s.record("delete")
	slog.Info("レシピを削除しました",
		slog.String("user_id", actorID),
		slog.String("recipe_id", recipe.ID),
	)
	return nil
}

// Get は閲覧者向けのレシピ詳細を返す。
func (s *Service) Get(ctx context.Context, viewerID, recipeID string) (*Detail, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, viewerID, recipe)
}

// List は絞り込み条件に一致するレシピを新しい順にページ単位で返す。
func (s *Service) List(ctx context.Context, viewerID string, filter Filter, page model.PageRequest) (*model.Page[Detail], error) {
	f := model.RecipeFilter{
		AuthorID: filter.AuthorID,
		TagSlugs: filter.TagSlugs,
		Limit:    page.Limit,
		Offset:   page.Offset(),
	}
	if viewerID != "" {
		if filter.IsFavorited {
			f.FavoritedBy = viewerID
		}
		if filter.IsInShoppingCart {
			f.InCartOf = viewerID
		}
	}

	recipes, total, err := s.recipes.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}

	details, err := s.toReadModel(ctx, viewerID, recipes)
	if err != nil {
		return nil, err
	}
	return &model.Page[Detail]{Items: details, Total: total}, nil
}

// ShareLink はレシピの共有用URLを返す。
func (s *Service) ShareLink(ctx context.Context, recipeID string) (string, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/recipes/" + recipe.ID, nil
}

func (s *Service) find(ctx context.Context, recipeID string) (*model.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return nil, model.NewRecipeNotFoundError(recipeID)
	}
	return recipe, nil
}

// findOwned はレシピを取得し、操作ユーザーが作者であることを確認する。
func (s *Service) findOwned(ctx context.Context, actorID, recipeID string) (*model.Recipe, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, model.NewPermissionDeniedError()
	}
	return recipe, nil
}

func (s *Service) detail(ctx context.Context, viewerID string, recipe *model.Recipe) (*Detail, error) {
	details, err := s.toReadModel(ctx, viewerID, []*model.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func withRecipeID(lines []model.RecipeIngredient, recipeID string) []model.RecipeIngredient {
	out := make([]model.RecipeIngredient, len(lines))
	for i, l := range lines {
		l.RecipeID = recipeID
		out[i] = l
	}
	return out
}
