package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/recipebox/internal/model"
)

func TestParseRecipesLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"?recipes_limit=3", 3},
		{"?recipes_limit=0", 0},
		{"?recipes_limit=-2", 0},
		{"?recipes_limit=abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/subscriptions"+tt.query, nil)
			if got := parseRecipesLimit(req); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSubscriptionHandler_ListFollowed(t *testing.T) {
	var gotLimit int
	h := NewSubscriptionHandler(&mockSubscriptionService{
		listFollowedFn: func(ctx context.Context, userID string, recipesLimit int, page model.PageRequest) ([]authorResponse, int, error) {
			gotLimit = recipesLimit
			return []authorResponse{{
				userResponse: userResponse{ID: "author-1", Username: "chef", IsSubscribed: true},
				Recipes:      []recipeBriefResponse{{ID: "recipe-1", Name: "卵焼き", CookingTime: 10}},
				RecipesCount: 4,
			}}, 1, nil
		},
	}, testPages)

	req := httptest.NewRequest(http.MethodGet, "/api/users/subscriptions?recipes_limit=1", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()
	h.ListFollowed(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotLimit != 1 {
		t.Errorf("expected recipes_limit 1, got %d", gotLimit)
	}

	resp := decodeBody[pageResponse[map[string]any]](t, w)
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	card := resp.Results[0]
	// 作者情報はカードのトップレベルに展開される
	if card["username"] != "chef" || card["is_subscribed"] != true {
		t.Errorf("expected flattened author fields, got %v", card)
	}
	if card["recipes_count"] != float64(4) {
		t.Errorf("expected recipes_count 4, got %v", card["recipes_count"])
	}
}

func TestSubscriptionHandler_ListFollowed_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewSubscriptionHandler(&mockSubscriptionService{}, testPages)

	req := httptest.NewRequest(http.MethodGet, "/api/users/subscriptions", nil)
	w := httptest.NewRecorder()
	h.ListFollowed(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestSubscriptionHandler_Subscribe(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"フォロー成功", nil, http.StatusCreated, ""},
		{"自分自身", model.NewSelfSubscriptionError(), http.StatusBadRequest, model.ErrCodeSelfSubscription},
		{"フォロー済み", model.NewDuplicateSubscriptionError(), http.StatusBadRequest, model.ErrCodeDuplicateSubscription},
		{"作者が存在しない", model.NewUserNotFoundError(), http.StatusNotFound, model.ErrCodeUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSubscriptionHandler(&mockSubscriptionService{
				subscribeFn: func(ctx context.Context, followerID, authorID string, recipesLimit int) (*authorResponse, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &authorResponse{userResponse: userResponse{ID: authorID, IsSubscribed: true}}, nil
				},
			}, testPages)

			req := httptest.NewRequest(http.MethodPost, "/api/users/author-1/subscribe", nil)
			req = withChiURLParam(withUserID(req, "user-1"), "id", "author-1")
			w := httptest.NewRecorder()
			h.Subscribe(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantCode != "" {
				if body := parseAPIErrorResponse(t, w); body.Code != tt.wantCode {
					t.Errorf("expected code %s, got %q", tt.wantCode, body.Code)
				}
			}
		})
	}
}

func TestSubscriptionHandler_Unsubscribe(t *testing.T) {
	var gotFollower, gotAuthor string
	h := NewSubscriptionHandler(&mockSubscriptionService{
		unsubscribeFn: func(ctx context.Context, followerID, authorID string) error {
			gotFollower, gotAuthor = followerID, authorID
			return nil
		},
	}, testPages)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/author-1/subscribe", nil)
	req = withChiURLParam(withUserID(req, "user-1"), "id", "author-1")
	w := httptest.NewRecorder()
	h.Unsubscribe(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if gotFollower != "user-1" || gotAuthor != "author-1" {
		t.Errorf("unexpected args: follower=%q author=%q", gotFollower, gotAuthor)
	}
}

func TestSubscriptionHandler_Unsubscribe_NotSubscribed(t *testing.T) {
	h := NewSubscriptionHandler(&mockSubscriptionService{
		unsubscribeFn: func(ctx context.Context, followerID, authorID string) error {
			return model.NewSubscriptionNotFoundError(authorID)
		},
	}, testPages)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/author-1/subscribe", nil)
	req = withChiURLParam(withUserID(req, "user-1"), "id", "author-1")
	w := httptest.NewRecorder()
	h.Unsubscribe(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
