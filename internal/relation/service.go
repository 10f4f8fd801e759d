// Package relation はお気に入りと買い物リストに共通するリレーション操作を提供する。
// 種別はmodel.RelationKindで指定し、種別固有の属性はRelationAttrsで渡す。
package relation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/repository"
)

// ChangeRecorder はリレーションの変更を記録するインターフェース。
type ChangeRecorder interface {
	RecordRelationChange(kind, op string)
}

// Service はリレーション操作のサービス層。
type Service struct {
	relationRepo repository.RelationRepository
	recipeRepo   repository.RecipeRepository
	recorder     ChangeRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(relationRepo repository.RelationRepository, recipeRepo repository.RecipeRepository) *Service {
	return &Service{
		relationRepo: relationRepo,
		recipeRepo:   recipeRepo,
	}
}

// SetRecorder はリレーションの変更を記録するレコーダーを設定する。
func (s *Service) SetRecorder(r ChangeRecorder) {
	s.recorder = r
}

func (s *Service) record(kind model.RelationKind, op string) {
	if s.recorder != nil {
		s.recorder.RecordRelationChange(string(kind), op)
	}
}

// Add はレシピをユーザーのリレーションに追加し、レシピの簡略表現を返す。
// 登録済みの場合は種別に応じた重複エラーを返す。
func (s *Service) Add(ctx context.Context, kind model.RelationKind, userID, recipeID string, attrs model.RelationAttrs) (*model.RecipeCard, error) {
	if !kind.IsValid() {
		return nil, model.NewInvalidRelationKindError(string(kind))
	}
	if attrs.PlannedDate != nil && kind != model.RelationShoppingCart {
		return nil, model.NewInvalidRelationPayloadError("planned_date")
	}

	recipe, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return nil, model.NewRecipeNotFoundError(recipeID)
	}

	rel := &model.Relation{
		ID:        uuid.New().String(),
		Kind:      kind,
		UserID:    userID,
		RecipeID:  recipe.ID,
		Attrs:     attrs,
		CreatedAt: time.Now(),
	}
	if err := s.relationRepo.Add(ctx, rel); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, model.NewDuplicateRelationError(kind)
		case errors.Is(err, repository.ErrReferenceMissing):
			// 存在確認の後にレシピが削除された
			return nil, model.NewRecipeNotFoundError(recipe.ID)
		}
		return nil, fmt.Errorf("リレーションの追加に失敗しました: %w", err)
	}

	s.record(kind, "add")
	slog.Info("リレーションを追加しました",
		slog.String("kind", string(kind)),
		slog.String("user_id", userID),
		slog.String("recipe_id", recipe.ID),
	)

	card := recipe.ToCard()
	return &card, nil
}

// Remove はレシピをユーザーのリレーションから外す。未登録の場合は種別に応じた未検出エラーを返す。
func (s *Service) Remove(ctx context.Context, kind model.RelationKind, userID, recipeID string) error {
	if !kind.IsValid() {
		return model.NewInvalidRelationKindError(string(kind))
	}

	recipe, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return model.NewRecipeNotFoundError(recipeID)
	}

	removed, err := s.relationRepo.Remove(ctx, kind, userID, recipe.ID)
	if err != nil {
		return fmt.Errorf("リレーションの削除に失敗しました: %w", err)
	}
	if !removed {
		return model.NewRelationNotFoundError(kind)
	}

	s.record(kind, "remove")
	slog.Info("リレーションを削除しました",
		slog.String("kind", string(kind)),
		slog.String("user_id", userID),
		slog.String("recipe_id", recipe.ID),
	)
	return nil
}

// Exists はレシピがユーザーのリレーションに含まれるかを返す。userIDが空（匿名）の場合は常にfalse。
func (s *Service) Exists(ctx context.Context, kind model.RelationKind, userID, recipeID string) (bool, error) {
	if !kind.IsValid() {
		return false, model.NewInvalidRelationKindError(string(kind))
	}
	if userID == "" {
		return false, nil
	}
	ok, err := s.relationRepo.Exists(ctx, kind, userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("リレーションの取得に失敗しました: %w", err)
	}
	return ok, nil
}

// ExistsMany は複数のレシピについてリレーションの有無を1回のクエリで返す。
func (s *Service) ExistsMany(ctx context.Context, kind model.RelationKind, userID string, recipeIDs []string) (map[string]bool, error) {
	if !kind.IsValid() {
		return nil, model.NewInvalidRelationKindError(string(kind))
	}
	if userID == "" || len(recipeIDs) == 0 {
		return map[string]bool{}, nil
	}
	found, err := s.relationRepo.ExistingRecipeIDs(ctx, kind, userID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("リレーションの取得に失敗しました: %w", err)
	}
	return found, nil
}
