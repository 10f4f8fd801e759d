package recipe

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/recipebox/internal/model"
)

// Detail は閲覧者向けに組み立てたレシピの詳細表示。
// IsFavorited, IsInShoppingCart, Author.IsSubscribedは匿名閲覧者には常にfalse。
type Detail struct {
	ID               string
	Name             string
	Description      string
	CookingTime      int
	ImageURL         string
	CreatedAt        time.Time
	Author           model.Profile
	Ingredients      []model.IngredientLine
	Tags             []*model.Tag
	IsFavorited      bool
	IsInShoppingCart bool
}

// viewerFlags は閲覧者ごとの状態をまとめて取得した結果。
type viewerFlags struct {
	subscribed map[string]bool
	favorited  map[string]bool
	inCart     map[string]bool
}

// toReadModel はレシピ一覧を詳細表示に変換する。
// 材料行、タグ、作者、閲覧者の状態はレシピ件数によらず種類ごとに1回のクエリで取得する。
func (s *Service) toReadModel(ctx context.Context, viewerID string, recipes []*model.Recipe) ([]Detail, error) {
	details := make([]Detail, len(recipes))
	if len(recipes) == 0 {
		return details, nil
	}

	recipeIDs := make([]string, len(recipes))
	authorIDs := make([]string, 0, len(recipes))
	seenAuthor := make(map[string]struct{}, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		if _, ok := seenAuthor[r.AuthorID]; !ok {
			seenAuthor[r.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	lines, err := s.recipes.ListLines(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("材料行の取得に失敗しました: %w", err)
	}
	tags, err := s.tags.ListByRecipeIDs(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("作者の取得に失敗しました: %w", err)
	}
	authorByID := make(map[string]*model.User, len(authors))
	for _, a := range authors {
		authorByID[a.ID] = a
	}

	flags, err := s.loadViewerFlags(ctx, viewerID, recipeIDs, authorIDs)
	if err != nil {
		return nil, err
	}

	for i, r := range recipes {
		author := model.Profile{ID: r.AuthorID}
		if a, ok := authorByID[r.AuthorID]; ok {
			author = a.ToProfile(flags.subscribed[r.AuthorID])
		}
		recipeLines := lines[r.ID]
		if recipeLines == nil {
			recipeLines = []model.IngredientLine{}
		}
		recipeTags := tags[r.ID]
		if recipeTags == nil {
			recipeTags = []*model.Tag{}
		}
		details[i] = Detail{
			ID:               r.ID,
			Name:             r.Name,
			Description:      r.Description,
			CookingTime:      r.CookingTime,
			ImageURL:         r.ImageURL,
			CreatedAt:        r.CreatedAt,
			Author:           author,
			Ingredients:      recipeLines,
			Tags:             recipeTags,
			IsFavorited:      flags.favorited[r.ID],
			IsInShoppingCart: flags.inCart[r.ID],
		}
	}
	return details, nil
}

// loadViewerFlags は閲覧者のフォロー、お気に入り、買い物リストの状態を取得する。
// 匿名閲覧者の場合はクエリを発行せず空の結果を返す。
func (s *Service) loadViewerFlags(ctx context.Context, viewerID string, recipeIDs, authorIDs []string) (*viewerFlags, error) {
	flags := &viewerFlags{
		subscribed: map[string]bool{},
		favorited:  map[string]bool{},
		inCart:     map[string]bool{},
	}
	if viewerID == "" {
		return flags, nil
	}

	var err error
	flags.subscribed, err = s.subscriptions.ExistingAuthorIDs(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
	}
	flags.favorited, err = s.relations.ExistsMany(ctx, model.RelationFavorite, viewerID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("お気に入り状態の取得に失敗しました: %w", err)
	}
	flags.inCart, err = s.relations.ExistsMany(ctx, model.RelationShoppingCart, viewerID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("買い物リスト状態の取得に失敗しました: %w", err)
	}
	return flags, nil
}
