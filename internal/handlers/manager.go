package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mroshb/kudos/internal/config"
	"github.com/mroshb/kudos/internal/feed"
	"github.com/mroshb/kudos/internal/middleware"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/services"
	"gorm.io/gorm"
)

type HandlerManager struct {
	Config     *config.Config
	DB         *gorm.DB
	KudoSvc    *services.KudoService
	CatalogSvc *services.CatalogService
	AuthSvc    *services.AuthService
	Limiter    *middleware.RateLimiter

	// Publisher receives the events queued while serving a request. Nil
	// discards them.
	Publisher feed.Publisher
	// Feed serves /ws. Nil leaves the route unregistered.
	Feed    http.Handler
	Clients func() int
}

func NewHandlerManager(
	cfg *config.Config,
	db *gorm.DB,
	kudoSvc *services.KudoService,
	catalogSvc *services.CatalogService,
	authSvc *services.AuthService,
	limiter *middleware.RateLimiter,
) *HandlerManager {
	return &HandlerManager{
		Config:     cfg,
		DB:         db,
		KudoSvc:    kudoSvc,
		CatalogSvc: catalogSvc,
		AuthSvc:    authSvc,
		Limiter:    limiter,
	}
}

// AttachFeed wires the realtime hub: events are published to it and /ws is
// served by srv.
func (h *HandlerManager) AttachFeed(hub *feed.Hub, srv http.Handler) {
	h.Publisher = hub
	h.Feed = srv
	h.Clients = hub.Count
}

func (h *HandlerManager) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.Config.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if h.Feed != nil {
		r.Method(http.MethodGet, "/ws", h.Feed)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Use(h.Limiter.LimitIP)
		r.Use(feed.OutboxMiddleware(h.Publisher))

		r.Get("/health", h.Health)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/token", h.ExchangeCode)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.AuthSvc))
			r.Use(h.Limiter.LimitUser)

			r.Get("/auth/me", h.Me)
			r.Post("/auth/code", h.IssueCode)

			r.Route("/kudos", func(r chi.Router) {
				r.Post("/", h.CreateKudo)
				r.Get("/", h.ListKudos)
				r.Get("/{id}", h.GetKudo)
				r.Patch("/{id}", h.UpdateKudo)
				r.Delete("/{id}", h.DeleteKudo)
				r.Post("/{id}/reactions", h.AddReaction)
				r.Delete("/{id}/reactions", h.RemoveReaction)
			})

			r.Get("/core-values", h.ListCoreValues)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Get("/{id}", h.GetUser)
				r.With(middleware.RequireRole(models.RoleAdmin)).Patch("/{id}", h.UpdateUser)
			})

			r.Route("/rewards", func(r chi.Router) {
				r.Get("/", h.ListRewards)
				r.Get("/{id}", h.GetReward)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleAdmin))
					r.Post("/", h.CreateReward)
					r.Patch("/{id}", h.UpdateReward)
					r.Delete("/{id}", h.DeleteReward)
				})
			})

			r.Route("/redemptions", func(r chi.Router) {
				r.Post("/", h.CreateRedemption)
				r.Get("/", h.ListRedemptions)
				r.Get("/{id}", h.GetRedemption)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleAdmin))
					r.Patch("/{id}", h.UpdateRedemption)
					r.Delete("/{id}", h.DeleteRedemption)
				})
			})
		})
	})

	return r
}
