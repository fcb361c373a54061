package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulppixels/pulppixels-backend/api/controllers"
	"github.com/pulppixels/pulppixels-backend/api/middleware"
	authsvc "github.com/pulppixels/pulppixels-backend/internal/auth"
	"github.com/pulppixels/pulppixels-backend/internal/catalog"
	"github.com/pulppixels/pulppixels-backend/internal/contact"
	"github.com/pulppixels/pulppixels-backend/internal/downloads"
	"github.com/pulppixels/pulppixels-backend/internal/payments"
	"github.com/pulppixels/pulppixels-backend/internal/ratings"
	"github.com/pulppixels/pulppixels-backend/pkg/auth/session"
	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/metrics"
	"github.com/pulppixels/pulppixels-backend/pkg/redis"
	"github.com/pulppixels/pulppixels-backend/pkg/storage/supastore"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type testEmailSender interface {
	SendTestEmail(ctx context.Context, to string) error
}

type verifyGuard interface {
	CheckAndMark(ctx context.Context, paymentID string) (bool, error)
	Release(ctx context.Context, paymentID string) error
}

type requestLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      redis.Pinger
	Storage    supastore.Pinger
	Sessions   sessionManager
	Metrics    *metrics.HTTPMetrics
	Registry   *prometheus.Registry
	Auth       authsvc.Service
	Catalog    catalog.Service
	Ratings    ratings.Service
	Payments   payments.Service
	Downloads  downloads.Service
	Contact    contact.Service
	TestMailer testEmailSender

	PaymentGuard verifyGuard
	Limiter      requestLimiter
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis, p.Storage))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/wallpapers", controllers.ListWallpapers(p.Catalog, logg))
		r.Get("/wallpapers/{wallpaperId}", controllers.GetWallpaper(p.Catalog, logg))
		r.Post("/wallpapers/{wallpaperId}/ratings", controllers.RateWallpaper(p.Ratings, logg))
		r.Get("/search", controllers.SearchWallpapers(p.Catalog, logg))

		r.Post("/orders", controllers.CreateOrder(p.Payments, logg))
		r.Post("/payments/verify", controllers.VerifyPayment(p.Payments, p.PaymentGuard, logg))
		r.Post("/payments/verify-upi", controllers.VerifyUPI(p.Payments, logg))

		r.Post("/downloads", controllers.RequestDownload(p.Downloads, logg))

		contactPolicy := middleware.NewRateLimitPolicy("contact", cfg.RateLimit.Window, cfg.RateLimit.ContactLimit)
		r.With(middleware.RateLimit(contactPolicy, p.Limiter, logg)).
			Post("/contact", controllers.SubmitContact(p.Contact, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			loginPolicy := middleware.NewRateLimitPolicy("login", cfg.RateLimit.Window, cfg.RateLimit.LoginLimit)
			r.With(middleware.RateLimit(loginPolicy, p.Limiter, logg)).
				Post("/login", controllers.AdminAuthLogin(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Sessions, cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(p.Sessions, cfg.JWT, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, p.Sessions, logg))

			r.Get("/wallpapers", controllers.AdminListWallpapers(p.Catalog, logg))
			r.Post("/wallpapers", controllers.AdminCreateWallpaper(p.Catalog, logg))
			r.Patch("/wallpapers/{wallpaperId}", controllers.AdminUpdateWallpaper(p.Catalog, logg))
			r.Delete("/wallpapers/{wallpaperId}", controllers.AdminDeleteWallpaper(p.Catalog, logg))

			// SMTP smoke test stays off production machines.
			if !cfg.App.IsProd() {
				r.Post("/diagnostics/email", controllers.AdminSendTestEmail(p.TestMailer, logg))
			}
		})
	})

	return r
}
