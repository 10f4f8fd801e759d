// Package subscription はユーザー間のフォロー関係のドメインロジックを提供する。
package subscription

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

// AuthorWithRecipes はフォロー中の作者カード。
// 最新レシピ（新しい順、最大recipesLimit件）と作者の全レシピ数を含む。
type AuthorWithRecipes struct {
	model.Profile
	Recipes      []model.RecipeCard
	RecipesCount int
}

// ChangeRecorder はフォロー関係の変更を記録するインターフェース。
type ChangeRecorder interface {
	RecordSubscriptionChange(op string)
}

// Service はフォロー関係のサービス層。
type Service struct {
	subRepo    repository.SubscriptionRepository
	userRepo   repository.UserRepository
	recipeRepo repository.RecipeRepository
	recorder   ChangeRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
) *Service {
	return &Service{
		subRepo:    subRepo,
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
	}
}

// SetRecorder はフォロー関係の変更を記録するレコーダーを設定する。
func (s *Service) SetRecorder(r ChangeRecorder) {
	s.recorder = r
}

func (s *Service) record(op string) {
	if s.recorder != nil {
		s.recorder.RecordSubscriptionChange(op)
	}
}

// Subscribe はfollowerIDのユーザーがauthorIDの作者をフォローする。
// 作者の存在確認、自分自身、フォロー済みの順に検証し、作成後の作者カードを返す。
func (s *Service) Subscribe(ctx context.Context, followerID, authorID string, recipesLimit int) (*AuthorWithRecipes, error) {
	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("作者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return nil, model.NewUserNotFoundError()
	}
	// URLのIDは大文字やブレース付きでも通るため、比較には正規化済みの行のIDを使う
	authorID = author.ID
	if followerID == authorID {
		return nil, model.NewSelfSubscriptionError()
	}

	exists, err := s.subRepo.Exists(ctx, followerID, authorID)
	if err != nil {
		return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
	}
	if exists {
		return nil, model.NewDuplicateSubscriptionError()
	}

	sub := &model.Subscription{
		ID:         uuid.New().String(),
		FollowerID: followerID,
		AuthorID:   authorID,
		CreatedAt:  time.Now(),
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		// 事前確認の後に同時にフォローされた場合
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, model.NewDuplicateSubscriptionError()
		case errors.Is(err, repository.ErrCheckViolation):
			return nil, model.NewSelfSubscriptionError()
		case errors.Is(err, repository.ErrReferenceMissing):
			return nil, model.NewUserNotFoundError()
		}
		return nil, fmt.Errorf("フォローに失敗しました: %w", err)
	}

	s.record("subscribe")
	slog.Info("作者をフォローしました",
		slog.String("user_id", followerID),
		slog.String("author_id", authorID),
	)

	cards, err := s.buildCards(ctx, []*model.User{author}, map[string]bool{authorID: true}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// Unsubscribe はフォローを解除する。フォローしていない場合はSUBSCRIPTION_NOT_FOUNDを返す。
func (s *Service) Unsubscribe(ctx context.Context, followerID, authorID string) error {
	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		return fmt.Errorf("作者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return model.NewUserNotFoundError()
	}
	authorID = author.ID
	if followerID == authorID {
		return model.NewSelfSubscriptionError()
	}

	deleted, err := s.subRepo.Delete(ctx, followerID, authorID)
	if err != nil {
		return fmt.Errorf("フォロー解除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewSubscriptionNotFoundError(authorID)
	}

	s.record("unsubscribe")
	slog.Info("作者のフォローを解除しました",
		slog.String("user_id", followerID),
		slog.String("author_id", authorID),
	)
	return nil
}

// IsSubscribed はフォロー関係の有無を返す。followerIDが空（匿名）の場合は常にfalse。
func (s *Service) IsSubscribed(ctx context.Context, followerID, authorID string) (bool, error) {
	if followerID == "" {
		return false, nil
	}
	ok, err := s.subRepo.Exists(ctx, followerID, authorID)
	if err != nil {
		return false, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
	}
	return ok, nil
}

// ListFollowed はフォロー中の作者をページ単位で返す。
// recipesLimitが0以下の場合、作者ごとのレシピは全件を含める。
func (s *Service) ListFollowed(ctx context.Context, userID string, recipesLimit int, page model.PageRequest) (*model.Page[AuthorWithRecipes], error) {
	authors, total, err := s.subRepo.ListAuthorsByFollower(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
	}

	subscribed := make(map[string]bool, len(authors))
	for _, a := range authors {
		subscribed[a.ID] = true
	}

	cards, err := s.buildCards(ctx, authors, subscribed, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &model.Page[AuthorWithRecipes]{Items: cards, Total: total}, nil
}

// buildCards は作者ごとのレシピとレシピ数をまとめて取得して作者カードを組み立てる。
func (s *Service) buildCards(ctx context.Context, authors []*model.User, subscribed map[string]bool, recipesLimit int) ([]AuthorWithRecipes, error) {
	cards := make([]AuthorWithRecipes, len(authors))
	if len(authors) == 0 {
		return cards, nil
	}

	ids := make([]string, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	recipes, err := s.recipeRepo.ListByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("作者のレシピ取得に失敗しました: %w", err)
	}
	counts, err := s.recipeRepo.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("作者のレシピ数取得に失敗しました: %w", err)
	}

	for i, a := range authors {
		list := recipes[a.ID]
		recipeCards := make([]model.RecipeCard, len(list))
		for j, r := range list {
			recipeCards[j] = r.ToCard()
		}
		cards[i] = AuthorWithRecipes{
			Profile:      a.ToProfile(subscribed[a.ID]),
			Recipes:      recipeCards,
			RecipesCount: counts[a.ID],
		}
	}
	return cards, nil
}
