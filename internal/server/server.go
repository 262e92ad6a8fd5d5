// Package server wires storage, services and handlers into one router.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplist/shoplist-go/internal/config"
	"github.com/shoplist/shoplist-go/internal/crypto"
	"github.com/shoplist/shoplist-go/internal/handler"
	"github.com/shoplist/shoplist-go/internal/middleware"
	"github.com/shoplist/shoplist-go/internal/repository"
	"github.com/shoplist/shoplist-go/internal/service"
)

const banner = "Shopping List API is running..."

// Server owns the router and the stores behind it.
type Server struct {
	router      *chi.Mux
	tokens      *crypto.TokenService
	corsOrigins []string
}

// New opens both data files and builds the router. It fails if either
// file exists but cannot be read.
func New(cfg config.Config, hasher *crypto.PasswordHasher) (*Server, error) {
	users, err := repository.NewUserRepository(cfg.UsersFile)
	if err != nil {
		return nil, fmt.Errorf("opening user store: %w", err)
	}
	items, err := repository.NewItemRepository(cfg.ItemsFile)
	if err != nil {
		return nil, fmt.Errorf("opening item store: %w", err)
	}

	tokens, err := crypto.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:      chi.NewRouter(),
		tokens:      tokens,
		corsOrigins: cfg.CORSAllowedOrigins,
	}
	s.setupRoutes(
		handler.NewAuthHandler(service.NewAuthService(users, hasher, tokens)),
		handler.NewItemHandler(service.NewItemService(items, users)),
	)
	return s, nil
}

func (s *Server) setupRoutes(authHandler *handler.AuthHandler, itemHandler *handler.ItemHandler) {
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(banner))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.tokens))
			r.Get("/items", itemHandler.HandleList)
			r.Post("/items", itemHandler.HandleCreate)
			r.Put("/items/{id}", itemHandler.HandleUpdate)
			r.Delete("/items/{id}", itemHandler.HandleDelete)
		})
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
