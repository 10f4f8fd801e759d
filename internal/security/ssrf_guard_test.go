package security

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewSafeClient はタイムアウトとカスタムTransportが設定されることをテストする。
func TestNewSafeClient(t *testing.T) {
	guard := NewSSRFGuard()
	client := guard.NewSafeClient(5 * time.Second)

	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want %v", client.Timeout, 5*time.Second)
	}
	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Error("expected custom Transport")
	}
}

// TestNewSafeClientBlocksLoopback はSafeClientがループバックへの接続をブロックすることをテストする。
// httptestサーバーは127.0.0.1で起動されるため、safeurlがブロックする。
func TestNewSafeClientBlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	}))
	defer ts.Close()

	client := NewSSRFGuard().NewSafeClient(5 * time.Second)
	resp, err := client.Head(ts.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected error for loopback address request, got nil")
	}
}

func TestValidateURL(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		url     string
		wantErr bool
	}{
		// 公開URL
		{"https://images.example.com/recipes/curry.jpg", false},
		{"http://cdn.example.org/a.png", false},
		{"https://203.0.113.10/a.png", false},

		// プライベートIP
		{"http://10.0.0.1/a.png", true},
		{"http://172.16.0.1/a.png", true},
		{"http://192.168.1.100/a.png", true},

		// ループバック
		{"http://127.0.0.1/a.png", true},
		{"http://localhost/a.png", true},
		{"http://LOCALHOST./a.png", true},
		{"http://[::1]/a.png", true},
		{"http://0.0.0.0/a.png", true},

		// メタデータ
		{"http://169.254.169.254/latest/meta-data/", true},
		{"http://metadata.google.internal/computeMetadata/v1/", true},

		// 不正なURL
		{"", true},
		{"not-a-url", true},
		{"ftp://example.com/a.png", true},
		{"file:///etc/passwd", true},
		{"data:image/png;base64,iVBORw0KGgo=", true},
		{"https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateURL(%q) should have returned error", tt.url)
				}
				if !errors.Is(err, ErrUnsafeURL) {
					t.Errorf("ValidateURL(%q) error = %v, want ErrUnsafeURL", tt.url, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateURL(%q) returned error: %v", tt.url, err)
			}
		})
	}
}

// TestSSRFGuardInterface はSSRFGuardがインターフェースを正しく実装していることをテストする。
func TestSSRFGuardInterface(t *testing.T) {
	var _ SSRFGuardService = NewSSRFGuard()
}
