package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tally-money/tally/internal/auth"
	accounthttp "github.com/tally-money/tally/internal/http/account"
	ledgerhttp "github.com/tally-money/tally/internal/http/ledger"
	"github.com/tally-money/tally/internal/http/middleware"
)

func New(
	tokens *auth.JWTManager,
	authV1 *accounthttp.Handler,
	ledgerV1 *ledgerhttp.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(chimiddleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))

			r.Route("/account", func(r chi.Router) {
				r.Use(chimiddleware.AllowContentType("application/json"))
				authV1.ProfileRoutes(r)
			})

			r.Route("/people", func(r chi.Router) {
				r.Use(chimiddleware.AllowContentType("application/json"))
				ledgerV1.PeopleRoutes(r)
			})

			r.Route("/debts", func(r chi.Router) {
				r.Use(chimiddleware.AllowContentType("application/json"))
				ledgerV1.DebtRoutes(r)
			})
		})
	})

	return router
}
