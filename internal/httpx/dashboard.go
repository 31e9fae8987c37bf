package httpx

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/redisx"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"net/http"
	"time"
)

// dashboardStats: snapshot dari projector kalau ada, fallback ke DB.
func (a *API) dashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var st rental.DashboardStats
	if a.Cache.GetJSON(ctx, redisx.KeyDashboardStats, &st) {
		ok(w, http.StatusOK, map[string]any{"stats": st, "cached": true})
		return
	}
	st, err := a.Stats.DashboardStats(ctx)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Cache.SetJSON(ctx, redisx.KeyDashboardStats, st, redisx.TTLStatsCache)
	ok(w, http.StatusOK, map[string]any{"stats": st, "cached": false})
}
