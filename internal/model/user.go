package model

import "time"

// User はサービス利用ユーザーを表す。
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile は閲覧者向けに整形したユーザー情報。
// IsSubscribedは閲覧者がこのユーザーをフォローしているかを表し、匿名閲覧者には常にfalse。
type Profile struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	IsSubscribed bool
}

// ToProfile はパスワードハッシュを除いたプロフィールを返す。
func (u *User) ToProfile(isSubscribed bool) Profile {
	return Profile{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// Session はユーザーのログインセッションを表す。
// セッションは外部の認証基盤が発行し、本サービスは参照のみ行う。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Subscription はフォロワーから作者へのフォロー関係を表す。
type Subscription struct {
	ID         string
	FollowerID string
	AuthorID   string
	CreatedAt  time.Time
}
