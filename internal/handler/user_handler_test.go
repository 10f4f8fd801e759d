package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/recipebox/internal/model"
)

func TestUserHandler_Register_Success(t *testing.T) {
	var got registerRequest
	h := NewUserHandler(&mockUserService{
		registerFn: func(ctx context.Context, req registerRequest) (*userResponse, error) {
			got = req
			return &userResponse{ID: "user-1", Email: req.Email, Username: req.Username}, nil
		},
	}, testPages)

	body := `{"email":"chef@example.com","username":"chef","first_name":"Taro","last_name":"Yamada","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	if got.FirstName != "Taro" || got.Password != "s3cret-pass" {
		t.Errorf("request not decoded: %+v", got)
	}
	resp := decodeBody[map[string]any](t, w)
	if _, ok := resp["password"]; ok {
		t.Error("password must not be returned")
	}
	if resp["is_subscribed"] != false {
		t.Errorf("expected is_subscribed=false, got %v", resp["is_subscribed"])
	}
}

func TestUserHandler_Register_ValidationError(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		registerFn: func(ctx context.Context, req registerRequest) (*userResponse, error) {
			return nil, model.NewValidationError([]model.FieldError{
				{Field: "email", Code: model.ErrCodeDuplicateEmail, Message: "このメールアドレスは登録済みです。"},
			})
		},
	}, testPages)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"email":"dup@example.com"}`))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	body := parseAPIErrorResponse(t, w)
	if len(body.Details) != 1 || body.Details[0].Code != model.ErrCodeDuplicateEmail {
		t.Errorf("unexpected details: %+v", body.Details)
	}
}

func TestUserHandler_Register_InvalidJSON(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, testPages)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`not json`))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUserHandler_List_PassesViewerAndPage(t *testing.T) {
	var gotViewer string
	var gotPage model.PageRequest
	h := NewUserHandler(&mockUserService{
		listFn: func(ctx context.Context, viewerID string, page model.PageRequest) ([]userResponse, int, error) {
			gotViewer = viewerID
			gotPage = page
			return []userResponse{{ID: "user-2", IsSubscribed: true}}, 7, nil
		},
	}, testPages)

	req := httptest.NewRequest(http.MethodGet, "/api/users?page=2&limit=1", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotViewer != "user-1" {
		t.Errorf("expected viewer user-1, got %q", gotViewer)
	}
	if gotPage != (model.PageRequest{Page: 2, Limit: 1}) {
		t.Errorf("unexpected page: %+v", gotPage)
	}
	resp := decodeBody[pageResponse[userResponse]](t, w)
	if resp.Count != 7 || len(resp.Results) != 1 || !resp.Results[0].IsSubscribed {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Next == nil || resp.Previous == nil {
		t.Error("expected both next and previous links")
	}
}

func TestUserHandler_Get_Anonymous(t *testing.T) {
	var gotViewer = "unset"
	h := NewUserHandler(&mockUserService{
		profileFn: func(ctx context.Context, viewerID, userID string) (*userResponse, error) {
			gotViewer = viewerID
			return &userResponse{ID: userID}, nil
		},
	}, testPages)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-2", nil)
	req = withChiURLParam(req, "id", "user-2")
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotViewer != "" {
		t.Errorf("expected anonymous viewer, got %q", gotViewer)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		profileFn: func(ctx context.Context, viewerID, userID string) (*userResponse, error) {
			return nil, model.NewUserNotFoundError()
		},
	}, testPages)

	req := httptest.NewRequest(http.MethodGet, "/api/users/missing", nil)
	req = withChiURLParam(req, "id", "missing")
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestUserHandler_Me(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		profileFn: func(ctx context.Context, viewerID, userID string) (*userResponse, error) {
			if viewerID != userID {
				t.Errorf("expected viewer to equal user, got %q and %q", viewerID, userID)
			}
			return &userResponse{ID: userID, Username: "chef"}, nil
		},
	}, testPages)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp userResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.ID != "user-1" {
		t.Errorf("expected id user-1, got %q", resp.ID)
	}
}

func TestUserHandler_Me_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, testPages)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestUserHandler_Withdraw(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		withdrawFn func(ctx context.Context, userID string) error
		wantStatus int
	}{
		{
			name:       "正常に退会",
			userID:     "user-1",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "未認証",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "DBエラー",
			userID: "user-1",
			withdrawFn: func(ctx context.Context, userID string) error {
				return errors.New("db error")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUserHandler(&mockUserService{withdrawFn: tt.withdrawFn}, testPages)

			req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
			if tt.userID != "" {
				req = withUserID(req, tt.userID)
			}
			w := httptest.NewRecorder()
			h.Withdraw(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
