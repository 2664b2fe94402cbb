package main

import (
	"net/http"

	"claridx/internal/common"
	"claridx/internal/wire"

	"github.com/gorilla/mux"
)

// setupRouter mounts every handler under /api/v1. CORS wraps the router so
// preflight requests are answered even for paths with no OPTIONS route.
func setupRouter(app *wire.Application) http.Handler {
	router := mux.NewRouter()
	router.Use(common.LoggingMiddleware(app.Logger.Named("http")))

	api := router.PathPrefix("/api/v1").Subrouter()

	public := api.NewRoute().Subrouter()
	app.User.RegisterPublicRoutes(public)
	app.Locale.RegisterRoutes(public)
	app.Health.RegisterRoutes(public)

	protected := api.NewRoute().Subrouter()
	protected.Use(common.AuthMiddleware(app.Users, app.Logger))
	app.User.RegisterRoutes(protected)
	app.Conversation.RegisterRoutes(protected)
	app.Copilot.RegisterRoutes(protected)

	return common.CORSMiddleware(app.Config.Server.AllowedOrigin)(router)
}
