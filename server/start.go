package server

import (
	"context"
	"net/http"
	"os"

	cachepackage "bookstore/cache"
	"bookstore/config"
	"bookstore/database"
	"bookstore/handlers"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// makeCheckAuth resolves the session cookie so request logs carry the
// logged-in username. Every route in this app is public (AuthType "none");
// the handlers themselves decide what session state means.
func makeCheckAuth(sessionCache cache.Cache) func(r *http.Request) (bool, httpserver.RequestAuth) {
	return func(r *http.Request) (bool, httpserver.RequestAuth) {
		user, ok := handlers.CurrentUser(r, sessionCache)
		if !ok {
			return false, httpserver.RequestAuth{}
		}

		return true, httpserver.RequestAuth{
			Type:   "session",
			Client: user.Username,
			Claims: map[string]interface{}{"user_id": user.UserID},
		}
	}
}

func StartServer() {
	// Initialize logger
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	logger.Info("Starting Bookstore Service...")

	cfg := config.Load()

	// Initialize database
	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	// Initialize cache (session + read cache backend)
	sessionCache := cachepackage.InitializeCache(cfg)
	defer sessionCache.Close()

	// Initialize handlers
	productHandler := handlers.NewProductHandler(dbConn, sessionCache)
	accountHandler := handlers.NewAccountHandler(dbConn, sessionCache, cfg.SessionTTL)
	pageHandler := handlers.NewPageHandler(sessionCache)

	// Create HTTP server with session-aware request auth
	server := httpserver.New(cfg.AppPort, makeCheckAuth(sessionCache))

	// Register routes
	server.Register(httpserver.Route{
		Name:     "HealthCheck",
		Method:   "GET",
		Path:     "/health",
		AuthType: "none",
	}, httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "bookstore"}`))
	}))

	server.Register(httpserver.Route{
		Name:     "Index",
		Method:   "GET",
		Path:     "/",
		AuthType: "none",
	}, httpserver.HandlerFunc(pageHandler.Index))

	server.Register(httpserver.Route{
		Name:     "LoginPage",
		Method:   "GET",
		Path:     "/accounts/login/",
		AuthType: "none",
	}, httpserver.HandlerFunc(accountHandler.LoginPage))

	server.Register(httpserver.Route{
		Name:     "Login",
		Method:   "POST",
		Path:     "/accounts/login/",
		AuthType: "none",
	}, httpserver.HandlerFunc(accountHandler.Login))

	server.Register(httpserver.Route{
		Name:     "Logout",
		Method:   "GET",
		Path:     "/accounts/logout/",
		AuthType: "none",
	}, httpserver.HandlerFunc(accountHandler.Logout))

	server.Register(httpserver.Route{
		Name:     "SignupPage",
		Method:   "GET",
		Path:     "/accounts/signup/",
		AuthType: "none",
	}, httpserver.HandlerFunc(accountHandler.SignupPage))

	server.Register(httpserver.Route{
		Name:     "Signup",
		Method:   "POST",
		Path:     "/accounts/signup/",
		AuthType: "none",
	}, httpserver.HandlerFunc(accountHandler.Signup))

	server.Register(httpserver.Route{
		Name:     "SignupSuccess",
		Method:   "GET",
		Path:     "/accounts/signup/success/",
		AuthType: "none",
	}, httpserver.HandlerFunc(accountHandler.SignupSuccess))

	server.Register(httpserver.Route{
		Name:     "ListProducts",
		Method:   "GET",
		Path:     "/api/products/",
		AuthType: "none",
	}, httpserver.HandlerFunc(productHandler.ListProducts))

	server.Register(httpserver.Route{
		Name:     "CreateProduct",
		Method:   "POST",
		Path:     "/api/products/",
		AuthType: "none",
	}, httpserver.HandlerFunc(productHandler.CreateProduct))

	server.Register(httpserver.Route{
		Name:     "GetProduct",
		Method:   "GET",
		Path:     "/api/product/{id}/",
		AuthType: "none",
	}, httpserver.HandlerFunc(productHandler.GetProduct))

	server.Register(httpserver.Route{
		Name:     "UpdateProduct",
		Method:   "PUT",
		Path:     "/api/product/{id}/",
		AuthType: "none",
	}, httpserver.HandlerFunc(productHandler.UpdateProduct))

	server.Register(httpserver.Route{
		Name:     "DeleteProduct",
		Method:   "DELETE",
		Path:     "/api/product/{id}/",
		AuthType: "none",
	}, httpserver.HandlerFunc(productHandler.DeleteProduct))

	logger.Info("Bookstore Service started", zap.String("port", cfg.AppPort))
	logger.Info("Health check: GET /health")
	logger.Info("Pages: GET / ; accounts under /accounts/ ; API under /api/")

	// Start server
	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}
