package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidImage はレシピ画像として受け付けられないURLを表す。
var ErrInvalidImage = errors.New("invalid image reference")

// maxImageURLLength は画像URLの最大長。
const maxImageURLLength = 2048

// ImageReferenceChecker はレシピ画像URLの検証インターフェース。
// 画像本体は外部ストレージにあり、本サービスはURLのみを保持する。
type ImageReferenceChecker interface {
	// Check はURLが画像参照として妥当かを検証する。
	// 不正な場合はErrInvalidImageをラップしたエラーを返す。
	Check(ctx context.Context, rawURL string) error
}

// imageChecker はImageReferenceCheckerの実装。
// clientがnilの場合は静的な検証のみを行う。
type imageChecker struct {
	guard  SSRFGuardService
	client *http.Client
}

// NewImageChecker はImageReferenceCheckerを生成する。
// headCheckがtrueの場合、SSRF防止付きクライアントでHEADリクエストを送りContent-Typeを確認する。
func NewImageChecker(guard SSRFGuardService, headCheck bool, timeout time.Duration) *imageChecker {
	c := &imageChecker{guard: guard}
	if headCheck {
		c.client = guard.NewSafeClient(timeout)
	}
	return c
}

// Check は画像URLを検証する。
func (c *imageChecker) Check(ctx context.Context, rawURL string) error {
	if len(rawURL) > maxImageURLLength {
		return fmt.Errorf("%w: URL exceeds %d characters", ErrInvalidImage, maxImageURLLength)
	}
	if err := c.guard.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if c.client == nil {
		return nil
	}
	return c.headCheck(ctx, rawURL)
}

// headCheck はHEADリクエストで画像が取得可能かを確認する。
func (c *imageChecker) headCheck(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	req.Header.Set("User-Agent", "recipebox-image-check/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrInvalidImage, resp.StatusCode)
	}
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: content type %q is not an image", ErrInvalidImage, contentType)
	}
	return nil
}
