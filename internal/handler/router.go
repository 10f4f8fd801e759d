package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/recipebox/internal/middleware"
	"github.com/hitoshi/recipebox/internal/model"
)

// HealthChecker はヘルスチェックでDB疎通を確認するためのインターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	MetricsRecorder   middleware.HTTPMetricsRecorder

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 一覧のページネーション
	Pages PageConfig

	// ドメイン
	CatalogService      CatalogServiceInterface
	UserService         UserServiceInterface
	SubscriptionService SubscriptionServiceInterface
	RecipeService       RecipeServiceInterface
	RelationService     RelationServiceInterface
	ShoppingListService ShoppingListServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → RequestID → RealIP → OptionalSession
//	→ Logging → Metrics → CSRF → RateLimit(GeneralMiddleware)
//
// 認証が必要なルートにはRequireAuthを、レシピの作成・更新にはRecipeWriteMiddlewareを追加する。
// /health と /metrics はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	catalogHandler := NewCatalogHandler(deps.CatalogService)
	userHandler := NewUserHandler(deps.UserService, deps.Pages)
	subHandler := NewSubscriptionHandler(deps.SubscriptionService, deps.Pages)
	recipeHandler := NewRecipeHandler(deps.RecipeService, deps.ShoppingListService, deps.Pages)
	relationHandler := NewRelationHandler(deps.RelationService)

	requireAuth := middleware.NewRequireAuthMiddleware()
	recipeWrite := deps.RateLimiter.RecipeWriteMiddleware()

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.RequestID)
		r.Use(chimw.RealIP)
		r.Use(middleware.NewOptionalSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewLoggingMiddleware(logger))
		if deps.MetricsRecorder != nil {
			r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
		}
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// 材料カタログとタグ
		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", catalogHandler.SearchIngredients)
			r.Get("/{id}", catalogHandler.GetIngredient)
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", catalogHandler.ListTags)
			r.Get("/{id}", catalogHandler.GetTag)
		})

		// ユーザーとフォロー
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Register)

			r.With(requireAuth).Get("/me", userHandler.Me)
			r.With(requireAuth).Delete("/me", userHandler.Withdraw)
			r.With(requireAuth).Get("/subscriptions", subHandler.ListFollowed)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.With(requireAuth).Post("/subscribe", subHandler.Subscribe)
				r.With(requireAuth).Delete("/subscribe", subHandler.Unsubscribe)
			})
		})

		// レシピ、お気に入り、買い物リスト
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.With(requireAuth, recipeWrite).Post("/", recipeHandler.Create)
			r.With(requireAuth).Get("/download_shopping_cart", recipeHandler.DownloadShoppingList)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recipeHandler.Get)
				r.With(requireAuth, recipeWrite).Patch("/", recipeHandler.Update)
				r.With(requireAuth).Delete("/", recipeHandler.Delete)
				r.Get("/get-link", recipeHandler.ShareLink)

				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Post("/favorite", relationHandler.Add(model.RelationFavorite))
					r.Delete("/favorite", relationHandler.Remove(model.RelationFavorite))
					r.Post("/shopping_cart", relationHandler.Add(model.RelationShoppingCart))
					r.Delete("/shopping_cart", relationHandler.Remove(model.RelationShoppingCart))
				})
			})
		})
	})

	return r
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler はDBへの疎通を確認するヘルスチェックハンドラーを返す。
// checkerがnilの場合は常に正常を返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
