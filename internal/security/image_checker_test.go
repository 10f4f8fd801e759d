package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// permissiveGuard はhttptestサーバー（ループバック）への接続を許可するテスト用ガード。
type permissiveGuard struct {
	validateErr error
}

func (g *permissiveGuard) NewSafeClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (g *permissiveGuard) ValidateURL(rawURL string) error {
	return g.validateErr
}

// プローブ無効時は静的な検証のみを行う
func TestImageChecker_StaticOnly(t *testing.T) {
	checker := NewImageChecker(NewSSRFGuard(), false, time.Second)

	if err := checker.Check(context.Background(), "https://images.example.com/curry.jpg"); err != nil {
		t.Errorf("expected valid URL, got %v", err)
	}

	err := checker.Check(context.Background(), "http://169.254.169.254/latest/meta-data/")
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}

	long := "https://images.example.com/" + strings.Repeat("a", maxImageURLLength)
	if err := checker.Check(context.Background(), long); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage for long URL, got %v", err)
	}
}

func TestImageChecker_HeadCheck(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		wantErr     bool
	}{
		{name: "画像", status: http.StatusOK, contentType: "image/jpeg", wantErr: false},
		{name: "大文字のContent-Type", status: http.StatusOK, contentType: "IMAGE/PNG", wantErr: false},
		{name: "HTML", status: http.StatusOK, contentType: "text/html; charset=utf-8", wantErr: true},
		{name: "404", status: http.StatusNotFound, contentType: "image/jpeg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead {
					t.Errorf("method = %s, want HEAD", r.Method)
				}
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			checker := NewImageChecker(&permissiveGuard{}, true, time.Second)
			err := checker.Check(context.Background(), ts.URL+"/a.jpg")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidImage) {
					t.Errorf("expected ErrInvalidImage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// 静的検証に失敗した場合はリクエストを送らない
func TestImageChecker_HeadCheckSkippedWhenValidationFails(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	checker := NewImageChecker(&permissiveGuard{validateErr: ErrUnsafeURL}, true, time.Second)
	if err := checker.Check(context.Background(), ts.URL); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
	if called {
		t.Error("HEAD request should not be sent")
	}
}

func TestImageCheckerInterface(t *testing.T) {
	var _ ImageReferenceChecker = NewImageChecker(NewSSRFGuard(), false, time.Second)
}
