package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/FACorreiaa/go-poi-discovery/internal/api/search"
)

// Config contains dependencies needed for the router setup
type Config struct {
	SearchHandler *search.HandlerImpl
	AllowOrigins  []string
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300, // Maximum value not ignored by any major browsers
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	h := cfg.SearchHandler
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}

		r.Get("/search", h.Search)
		r.Get("/city-info", h.CityInfo)
		r.Get("/places", h.Places)
		r.Get("/places/{placeID}", h.Place)
		r.Get("/cities/suggest", h.SuggestCities)
		r.Post("/cache/clear", h.ClearCache)
		r.Get("/status", h.Status)
		r.Post("/itinerary", h.Itinerary)
		r.Get("/maps/config", h.MapsConfig)
	})

	return r
}
