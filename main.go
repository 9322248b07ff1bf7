package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/fxjournal/backend/src/config"
	"github.com/username/fxjournal/backend/src/database"
	"github.com/username/fxjournal/backend/src/handlers"
	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/security"
	"github.com/username/fxjournal/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("FXJournal backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	tradeService := services.NewTradeService(reportCache)
	calendarService := services.NewCalendarService(reportCache, config.Cfg.CalendarFeedURL)

	userHandler := handlers.NewUserHandler(authService, emailService, tradeService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	analyticsHandler := handlers.NewAnalyticsHandler(tradeService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)

	if config.Cfg.GoogleClientID != "" && config.Cfg.GoogleClientSecret != "" {
		handlers.InitializeGoogleOAuthConfig()
	}

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("GET /api/auth/verify-email", userHandler.VerifyEmailHandler)
	if config.Cfg.GoogleClientID != "" && config.Cfg.GoogleClientSecret != "" {
		apiRouter.HandleFunc("GET /api/auth/google/login", userHandler.HandleGoogleLogin)
		apiRouter.HandleFunc("GET /api/auth/google/callback", userHandler.HandleGoogleCallback)
	}

	// Auth actions, CSRF protected as a group
	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.Handle("POST /logout", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.LogoutUserHandler)))
	authActionRouter.HandleFunc("POST /request-password-reset", userHandler.RequestPasswordResetHandler)
	authActionRouter.HandleFunc("POST /reset-password", userHandler.ResetPasswordHandler)

	csrfProtection := handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", csrfProtection(authActionRouter)))

	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(handler))
	}

	apiRouter.Handle("POST /api/trades/import", applyCsrfAndAuth(tradeHandler.HandleImport))
	apiRouter.Handle("GET /api/trades/export", applyCsrfAndAuth(tradeHandler.HandleExport))
	apiRouter.Handle("GET /api/trades", applyCsrfAndAuth(tradeHandler.HandleListTrades))
	apiRouter.Handle("POST /api/trades", applyCsrfAndAuth(tradeHandler.HandleCreateTrade))
	apiRouter.Handle("DELETE /api/trades/all", applyCsrfAndAuth(tradeHandler.HandleDeleteAllTrades))
	apiRouter.Handle("GET /api/analytics/summary", applyCsrfAndAuth(analyticsHandler.HandleSummary))
	apiRouter.Handle("POST /api/calendar/parse", applyCsrfAndAuth(calendarHandler.HandleParseCalendar))
	apiRouter.Handle("GET /api/calendar/today", applyCsrfAndAuth(calendarHandler.HandleTodayEvents))
	apiRouter.Handle("GET /api/user/has-data", applyCsrfAndAuth(userHandler.HasDataHandler))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "FXJournal backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
