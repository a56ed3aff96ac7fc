package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/campaign-dashboard/internal/dashboard"
	"github.com/AngelCh415/campaign-dashboard/internal/ingest"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/utils"
)

// NewRouter serves the dashboard as JSON. metrics may be nil.
func NewRouter(log *slog.Logger, d *dashboard.Dashboard, metrics http.Handler) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !d.State().Loaded() {
			http.Error(w, "snapshot not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	if metrics != nil {
		mux.Method(http.MethodGet, "/metrics", metrics)
	}

	mux.Route("/view", func(v chi.Router) {
		v.Get("/state", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.State()) })

		v.Group(func(g chi.Router) {
			g.Use(notWhileLoading(d))
			g.Get("/records", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.Page()) })
			g.Get("/summary", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.Summary()) })
			g.Get("/chart", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.ChartData()) })
			g.Get("/top", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.TopPerformers()) })
			g.Get("/channels", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.UniqueChannels()) })
			g.Get("/snapshot", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.Snapshot()) })
		})

		v.Post("/search", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, d.SetSearchTerm(r.URL.Query().Get("q")))
		})

		v.Post("/channels/toggle", func(w http.ResponseWriter, r *http.Request) {
			name := r.URL.Query().Get("name")
			if name == "" {
				http.Error(w, "name required", 400)
				return
			}
			writeJSON(w, d.ToggleChannel(name))
		})

		v.Post("/channels/clear", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.ClearChannels()) })

		v.Post("/sort", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query().Get("key")
			if q == "" {
				http.Error(w, "key required", 400)
				return
			}
			key, err := models.ParseSortKey(q)
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			writeJSON(w, d.SetSortKey(key))
		})

		v.Post("/page", func(w http.ResponseWriter, r *http.Request) {
			n, err := strconv.Atoi(r.URL.Query().Get("n"))
			if err != nil {
				http.Error(w, "n must be an integer", 400)
				return
			}
			writeJSON(w, d.SetCurrentPage(n))
		})

		v.Post("/reset", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, d.ResetFilters()) })
	})

	mux.Post("/snapshot/load", func(w http.ResponseWriter, r *http.Request) {
		// the load outlives a client that hangs up
		err := d.Load(context.WithoutCancel(r.Context()))
		switch {
		case errors.Is(err, ingest.ErrLoadInProgress):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, d.State())
	})

	return mux
}

// notWhileLoading answers 503 while a load is running.
func notWhileLoading(d *dashboard.Dashboard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d.Loading() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "snapshot loading", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
