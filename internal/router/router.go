package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/FACorreiaa/go-itinerary-engine/internal/api/itinerary"
	"github.com/FACorreiaa/go-itinerary-engine/internal/api/research"
)

// Config contains dependencies needed for the router setup
type Config struct {
	ItineraryHandler       itinerary.Handler
	ResearchHandler        research.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
}

// SetupRouter initializes the application routes. Server-wide middleware
// (request ID, logger, recoverer) is applied in main before mounting.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/itineraries/generate", cfg.ItineraryHandler.GenerateItinerary)
			r.Post("/itineraries/generate/research", cfg.ItineraryHandler.GenerateItineraryStream)
			r.Post("/places/research", cfg.ResearchHandler.ResearchPlaces)
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/itineraries", cfg.ItineraryHandler.SaveItinerary)
			r.Get("/itineraries", cfg.ItineraryHandler.ListItineraries)
			r.Get("/itineraries/{itineraryID}", cfg.ItineraryHandler.GetItinerary)
		})
	})

	return r
}
