// Package catalog は材料カタログとタグの参照機能を提供する。
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/repository"
)

// Service は材料とタグの参照サービス。
type Service struct {
	ingredientRepo repository.IngredientRepository
	tagRepo        repository.TagRepository
	searchLimit    int
}

// NewService はServiceの新しいインスタンスを生成する。
// searchLimitが0以下の場合、材料検索の件数は制限しない。
func NewService(
	ingredientRepo repository.IngredientRepository,
	tagRepo repository.TagRepository,
	searchLimit int,
) *Service {
	return &Service{
		ingredientRepo: ingredientRepo,
		tagRepo:        tagRepo,
		searchLimit:    searchLimit,
	}
}

// SearchIngredients は名前の前方一致で材料を検索する。
// 前後の空白は無視し、空のprefixはカタログ全件を返す。
func (s *Service) SearchIngredients(ctx context.Context, prefix string) ([]*model.Ingredient, error) {
	ingredients, err := s.ingredientRepo.SearchByPrefix(ctx, strings.TrimSpace(prefix), s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("材料の検索に失敗しました: %w", err)
	}
	return ingredients, nil
}

// GetIngredient は指定IDの材料を返す。
func (s *Service) GetIngredient(ctx context.Context, id string) (*model.Ingredient, error) {
	ingredient, err := s.ingredientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("材料の取得に失敗しました: %w", err)
	}
	if ingredient == nil {
		return nil, model.NewIngredientNotFoundError(id)
	}
	return ingredient, nil
}

// ListTags は全タグを名前順に返す。
func (s *Service) ListTags(ctx context.Context) ([]*model.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("タグ一覧の取得に失敗しました: %w", err)
	}
	return tags, nil
}

// GetTag は指定IDのタグを返す。
func (s *Service) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	if tag == nil {
		return nil, model.NewTagNotFoundError(id)
	}
	return tag, nil
}
