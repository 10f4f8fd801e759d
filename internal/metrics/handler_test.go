package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestHandler_ServesRecordedMetrics はスクレイプ結果に記録済みの各メトリクスが含まれることを検証する。
func TestHandler_ServesRecordedMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest(http.StatusCreated, 15*time.Millisecond)
	c.RecordRecipeWrite("create")
	c.RecordRelationChange("favorite", "add")
	c.RecordSubscriptionChange("subscribe")
	c.RecordShoppingListDownload(2)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{
		`recipebox_http_requests_total{status_code="201"} 1`,
		"recipebox_http_request_duration_seconds",
		`recipebox_recipes_written_total{op="create"} 1`,
		`recipebox_relation_changes_total{kind="favorite",op="add"} 1`,
		`recipebox_subscription_changes_total{op="subscribe"} 1`,
		"recipebox_shopping_list_downloads_total 1",
		"recipebox_shopping_list_lines",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("response should contain %q", name)
		}
	}
}
