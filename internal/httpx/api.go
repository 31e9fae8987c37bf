package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/auth"
	"github.com/ariefcatur/go-tool-rental/internal/redisx"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"net/http"
	"time"
)

// API wires the public booking endpoints and the admin back office.
type API struct {
	Engine     *rental.Engine
	Feedback   *rental.FeedbackDesk
	Categories rental.CategoryStore
	Inquiries  rental.InquiryStore
	Stats      rental.StatsStore
	Guard      *auth.Guard
	Cache      *redisx.Cache    // boleh nil
	Idem       IdempotencyStore // nil = pakai Cache
	Log        *zap.Logger

	RateLimitPerMin int
}

// IdempotencyStore holds Idempotency-Key markers for POST /rentals; *redisx.Cache implements it.
type IdempotencyStore interface {
	Claim(ctx context.Context, key, val string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, val string, ttl time.Duration)
	Del(ctx context.Context, keys ...string)
}

func (a *API) idem() IdempotencyStore {
	if a.Idem != nil {
		return a.Idem
	}
	return a.Cache
}

func (a *API) Register(r chi.Router) {
	limited := newRateLimiter(a.RateLimitPerMin)

	// publik
	r.Post("/admin/login", a.login)
	r.Get("/items", a.listItems)
	r.Get("/items/{id}", a.getItem)
	r.Get("/categories", a.listCategories)
	r.Group(func(r chi.Router) {
		r.Use(limited.middleware)
		r.Post("/rentals", a.createRental)
		r.Post("/feedback", a.submitFeedback)
		r.Post("/contact", a.submitInquiry)
	})

	// admin
	r.Group(func(r chi.Router) {
		r.Use(a.requireAdmin)
		r.Get("/rentals", a.listRentals)
		r.Get("/rentals/{id}", a.getRental)
		r.Put("/rentals", a.updateRentalStatus)
		r.Delete("/rentals", a.deleteRental)

		r.Post("/items", a.createItem)
		r.Put("/items", a.updateItem)
		r.Delete("/items", a.deleteItem)
		r.Get("/items/{id}/availability", a.itemAvailability)

		r.Post("/categories", a.createCategory)
		r.Put("/categories", a.updateCategory)
		r.Delete("/categories", a.deleteCategory)

		r.Get("/feedback", a.listFeedback)
		r.Delete("/feedback", a.deleteFeedback)

		r.Get("/contact", a.listInquiries)
		r.Put("/contact", a.setInquiryStatus)
		r.Delete("/contact", a.deleteInquiry)

		r.Get("/dashboard/stats", a.dashboardStats)
	})
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, err := a.Guard.Parse(r.Header.Get("Authorization"))
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithAdmin(r.Context(), admin)))
	})
}

// audit mencatat admin yang melakukan mutasi.
func (a *API) audit(r *http.Request, action string, fields ...zap.Field) {
	admin, found := auth.AdminFrom(r.Context())
	if !found {
		return
	}
	base := []zap.Field{zap.String("action", action), zap.Int64("admin_id", admin.ID), zap.String("admin", admin.Username)}
	a.Log.Info("admin action", append(base, fields...)...)
}

// invalidate drops read models touched by an inventory mutation.
func (a *API) invalidate(ctx context.Context, rentalIDs ...int64) {
	keys := []string{redisx.KeyDashboardStats}
	for _, id := range rentalIDs {
		keys = append(keys, fmt.Sprintf(redisx.KeyRentalStatus, id))
	}
	a.Cache.Del(ctx, keys...)
	a.Cache.Bump(ctx, redisx.KeyCatalogVersion)
}
