// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/repository"
)

const (
	maxNameLength     = 128
	maxEmailLength    = 254
	minPasswordLength = 8
	// bcryptは72バイトを超える入力を扱えない
	maxPasswordBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// reservedUsernames は /api/users/me と紛らわしいため登録できない名前。
var reservedUsernames = map[string]struct{}{
	"me": {},
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Service はユーザー管理のサービス層。
// 登録、プロフィール参照、一覧、退会のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	subRepo     repository.SubscriptionRepository
	hashCost    int
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	subRepo repository.SubscriptionRepository,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		subRepo:     subRepo,
		hashCost:    bcrypt.DefaultCost,
	}
}

// Register は入力を検証してユーザーを作成する。
// 入力の問題は1件ずつではなくまとめてVALIDATION_FAILEDとして返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	details := validateRegisterInput(in)

	// 形式が正しい場合のみ重複を事前確認する
	if !hasFieldError(details, "email") {
		existing, err := s.userRepo.FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
		}
		if existing != nil {
			details = append(details, duplicateEmailError())
		}
	}
	if !hasFieldError(details, "username") {
		existing, err := s.userRepo.FindByUsername(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
		}
		if existing != nil {
			details = append(details, duplicateUsernameError())
		}
	}
	if len(details) > 0 {
		return nil, model.NewValidationError(details)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前確認の後に同じ値で登録された場合
		var dupErr *repository.DuplicateError
		if errors.As(err, &dupErr) {
			switch dupErr.Constraint {
			case "users_username_key":
				return nil, model.NewValidationError([]model.FieldError{duplicateUsernameError()})
			default:
				return nil, model.NewValidationError([]model.FieldError{duplicateEmailError()})
			}
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

func validateRegisterInput(in RegisterInput) []model.FieldError {
	var details []model.FieldError

	if in.Email == "" {
		details = append(details, missingField("email"))
	} else if len(in.Email) > maxEmailLength || !isValidEmail(in.Email) {
		details = append(details, invalidField("email", "メールアドレスの形式が正しくありません。"))
	}

	switch {
	case in.Username == "":
		details = append(details, missingField("username"))
	case utf8.RuneCountInString(in.Username) > maxNameLength:
		details = append(details, invalidField("username", fmt.Sprintf("ユーザー名は%d文字以内で入力してください。", maxNameLength)))
	case !usernamePattern.MatchString(in.Username):
		details = append(details, invalidField("username", "ユーザー名に使用できるのは英数字と . @ + - _ のみです。"))
	default:
		if _, reserved := reservedUsernames[strings.ToLower(in.Username)]; reserved {
			details = append(details, invalidField("username", fmt.Sprintf("ユーザー名「%s」は使用できません。", in.Username)))
		}
	}

	for _, f := range []struct{ field, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
	} {
		if f.value == "" {
			details = append(details, missingField(f.field))
		} else if utf8.RuneCountInString(f.value) > maxNameLength {
			details = append(details, invalidField(f.field, fmt.Sprintf("%d文字以内で入力してください。", maxNameLength)))
		}
	}

	switch {
	case in.Password == "":
		details = append(details, missingField("password"))
	case utf8.RuneCountInString(in.Password) < minPasswordLength:
		details = append(details, invalidField("password", fmt.Sprintf("パスワードは%d文字以上で入力してください。", minPasswordLength)))
	case len(in.Password) > maxPasswordBytes:
		details = append(details, invalidField("password", "パスワードが長すぎます。"))
	}

	return details
}

// isValidEmail は表示名や山括弧を含まない単一のアドレスかを判定する。
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

func hasFieldError(details []model.FieldError, field string) bool {
	for _, d := range details {
		if d.Field == field {
			return true
		}
	}
	return false
}

func missingField(field string) model.FieldError {
	return model.FieldError{
		Field:   field,
		Code:    model.ErrCodeMissingField,
		Message: fmt.Sprintf("%sは必須です。", field),
	}
}

func invalidField(field, message string) model.FieldError {
	return model.FieldError{
		Field:   field,
		Code:    model.ErrCodeInvalidField,
		Message: message,
	}
}

func duplicateEmailError() model.FieldError {
	return model.FieldError{
		Field:   "email",
		Code:    model.ErrCodeDuplicateEmail,
		Message: "このメールアドレスは既に登録されています。",
	}
}

func duplicateUsernameError() model.FieldError {
	return model.FieldError{
		Field:   "username",
		Code:    model.ErrCodeDuplicateUsername,
		Message: "このユーザー名は既に使用されています。",
	}
}

// Profile は閲覧者から見たユーザーのプロフィールを返す。
// viewerIDが空（匿名）の場合、IsSubscribedは常にfalse。
func (s *Service) Profile(ctx context.Context, viewerID, userID string) (*model.Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	subscribed := false
	if viewerID != "" && viewerID != user.ID {
		subscribed, err = s.subRepo.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
		}
	}

	profile := user.ToProfile(subscribed)
	return &profile, nil
}

// List はユーザー一覧をページ単位で返す。フォロー状態は1回のクエリでまとめて取得する。
func (s *Service) List(ctx context.Context, viewerID string, page model.PageRequest) (*model.Page[model.Profile], error) {
	users, total, err := s.userRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	subscribed := map[string]bool{}
	if viewerID != "" && len(users) > 0 {
		ids := make([]string, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		subscribed, err = s.subRepo.ExistingAuthorIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
		}
	}

	profiles := make([]model.Profile, len(users))
	for i, u := range users {
		profiles[i] = u.ToProfile(subscribed[u.ID])
	}
	return &model.Page[model.Profile]{Items: profiles, Total: total}, nil
}

// Withdraw はユーザーの退会処理を実行する。
// セッションを削除した後にユーザーを削除する。
// レシピ、材料行、お気に入り、買い物リスト、フォロー関係はCASCADE削除される。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
