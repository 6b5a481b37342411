package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Cheertaboi/class-coupon-ledger/internal/api/handlers"
	"github.com/Cheertaboi/class-coupon-ledger/internal/api/middleware"
)

// NewRouter builds the HTTP router for the coupon ledger
func NewRouter(ledger handlers.CouponLedger, mw middleware.ChiMiddlewareConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(mw))

	couponHandler := handlers.NewCouponHandler(ledger)
	memberHandler := handlers.NewMemberCouponHandler(ledger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(mw))

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", couponHandler.ListCoupons)
			r.Post("/", couponHandler.CreateCoupon)
			r.Get("/stats", couponHandler.Stats)
			r.Get("/expiring", couponHandler.Expiring)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", couponHandler.GetCoupon)
				r.Put("/", couponHandler.UpdateCoupon)
				r.Delete("/", couponHandler.DeleteCoupon)
				r.Patch("/use", couponHandler.UseCoupon)
				r.Patch("/add-classes", couponHandler.AddClasses)
				r.Patch("/deactivate", couponHandler.DeactivateCoupon)
			})
		})

		// member-scoped coupon endpoints
		r.Route("/members/{id}", func(r chi.Router) {
			r.Get("/coupons", memberHandler.ListCoupons)
			r.Get("/coupon-summary", memberHandler.Summary)
			r.Post("/coupon/top-up", memberHandler.TopUp)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
