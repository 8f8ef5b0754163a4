package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"igbridge/config"
	"igbridge/handlers"
	"igbridge/middleware"
	"igbridge/routes"
	"igbridge/services/bridge"
	"igbridge/services/graph"
	"igbridge/services/handoff"
	"igbridge/services/oauth"
	"igbridge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if missing := cfg.Missing(); len(missing) > 0 {
		logger.Warn("main: missing configuration, OAuth endpoints will not work until it is set",
			zap.String("missing", strings.Join(missing, ", ")))
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := handoff.New(cfg, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize handoff store: %v", err)
	}
	monitor := utils.NewHealthMonitor(logger)
	switch s := store.(type) {
	case *handoff.MemoryStore:
		s.StartSweeper(rootCtx, time.Minute, logger)
	case *handoff.RedisStore:
		monitor.Register("redis", s.Ping)
	}
	monitor.Start(rootCtx, time.Minute)

	initiator := oauth.NewInitiator(oauth.InitiatorConfig{
		ClientID:    cfg.FBAppID,
		DialogURL:   cfg.OAuthDialogURL,
		CallbackURL: cfg.CallbackURL(),
	})
	graphClient := graph.NewClient(graph.Config{
		BaseURL:      cfg.GraphBaseURL,
		ClientID:     cfg.FBAppID,
		ClientSecret: cfg.FBAppSecret,
		RedirectURL:  cfg.CallbackURL(),
		TokenTimeout: cfg.TokenTimeout,
		PageTimeout:  cfg.PageTimeout,
	})
	resolver := &bridge.DefaultResolverService{
		Graph:  graphClient,
		Store:  store,
		Logger: logger,
	}
	oauthHandler := handlers.NewOAuthHandler(initiator, resolver, store)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlers.NewHandlerBundle(oauthHandler, monitor))

	// Start the HTTP server.
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s (callback %s)...", srv.Addr, cfg.CallbackURL())
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
