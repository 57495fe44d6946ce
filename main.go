package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"recipebook/auth"
	"recipebook/cart"
	"recipebook/config"
	"recipebook/db"
	"recipebook/logging"
	"recipebook/middleware"
	"recipebook/orderfeed"
	"recipebook/orders"
	"recipebook/ratelim"
	"recipebook/rdx"
	"recipebook/recipes"
	"recipebook/render"
	"recipebook/routes"
	"recipebook/uploads"
	"recipebook/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	database, err := db.Connect(startCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Client().Disconnect(ctx); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()
	if err := db.EnsureIndexes(startCtx, database); err != nil {
		return err
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

	rdb, err := rdx.Connect(startCtx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return err
	}
	defer rdb.Close()
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	rd, err := render.New(logger)
	if err != nil {
		return err
	}

	userRepo := users.NewMongoRepository(database)
	recipeRepo := recipes.NewMongoRepository(database)

	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, auth.NewRedisRevocations(rdb))

	hub := orderfeed.NewHub(logger, orderfeed.AllowOrigins(cfg.CORSOrigins))
	go hub.Run()

	cartSvc := cart.NewService(cart.NewMongoRepository(database), recipeRepo, cart.NewRedisCache(rdb), logger)
	orderSvc := orders.NewService(orders.NewMongoRepository(database), hub, logger)

	handlers := routes.Handlers{
		Auth:      auth.NewHandler(auth.NewService(userRepo), sessions, rd, logger, !cfg.IsDev()),
		Recipes:   recipes.NewHandler(recipes.NewService(recipeRepo, userRepo), uploads.NewStore(cfg.UploadDir), rd, logger),
		Cart:      cart.NewHandler(cartSvc, rd, logger),
		Orders:    orders.NewHandler(orderSvc, cartSvc, orders.NewReceiptSigner(cfg.SessionSecret), rd, logger),
		Feed:      hub,
		Session:   middleware.NewAuth(sessions, logger),
		UploadDir: cfg.UploadDir,
	}

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, ratelim.BurstFor(cfg.RateLimitRPS))
	router := routes.RoutesWrapper(handlers, rateLimiter)

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.Logging(logger)(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		logger.Info("stopping order feed")
		hub.Stop()
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}
