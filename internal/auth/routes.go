package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opengov-ph/treasury-backend/internal/middleware"
)

func SetupRoutes(svc *Service) http.Handler {
	r := chi.NewRouter()

	r.Post("/login", svc.LoginHandler)
	r.With(middleware.SessionMiddleware(svc)).Post("/logout", svc.LogoutHandler)
	r.With(middleware.SessionMiddleware(svc)).Get("/me", svc.MeHandler)

	return r
}
