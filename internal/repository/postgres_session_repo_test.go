package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newSessionRepo(t *testing.T) (*PostgresSessionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresSessionRepo(db), mock
}

// 期限切れの判定はクエリ側で行う
func TestPostgresSessionRepo_FindByID(t *testing.T) {
	repo, mock := newSessionRepo(t)
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	created := expires.Add(-24 * time.Hour)

	mock.ExpectQuery("FROM sessions\\s+WHERE id = \\$1 AND expires_at > now\\(\\)").
		WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow("session-1", testUserID, expires, created))

	got, err := repo.FindByID(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got == nil || got.UserID != testUserID || !got.ExpiresAt.Equal(expires) {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestPostgresSessionRepo_FindByID_ExpiredOrMissing(t *testing.T) {
	repo, mock := newSessionRepo(t)

	mock.ExpectQuery("FROM sessions").
		WithArgs("expired").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}))

	got, err := repo.FindByID(context.Background(), "expired")
	if err != nil || got != nil {
		t.Errorf("expected (nil, nil), got (%+v, %v)", got, err)
	}
}

func TestPostgresSessionRepo_DeleteByUserID(t *testing.T) {
	repo, mock := newSessionRepo(t)

	mock.ExpectExec("DELETE FROM sessions WHERE user_id = \\$1").
		WithArgs(testUserID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteByUserID(context.Background(), testUserID); err != nil {
		t.Fatalf("DeleteByUserID returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
