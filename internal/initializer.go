// Package internal wires the whole server process together: configuration,
// database pool, managers, background queue client, service and router.
package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"server-identity/internal/auth"
	"server-identity/internal/config"
	"server-identity/internal/handlers"
	"server-identity/internal/jobs"
	"server-identity/internal/managers"
	"server-identity/internal/querybuilder"
	"server-identity/internal/repositories"
	"server-identity/internal/routing"
)

// Init starts the HTTP server and blocks until shutdown.
func Init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}
	setLogLevel(cfg.LogLevel)

	pool := initializeDatabase(cfg)
	defer pool.Close()

	if err := repositories.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatal("Error ensuring database schema: ", err)
	}

	databaseMgr := managers.NewDatabaseManager(pool)
	jwtMgr := managers.NewJWTManager(cfg)

	queueClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Warn("Error closing queue client: ", err)
		}
	}()

	builder := querybuilder.New(databaseMgr.GetPool(), cfg.DBTimeout)
	users := repositories.NewUserRepository(builder)
	tokens := repositories.NewTokenRepository(builder)

	store := auth.NewTokenStore(tokens, auth.SystemClock(), cfg.EphemeralTokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	dispatcher := jobs.NewAsynqDispatcher(queueClient)
	service := auth.NewService(users, store, jwtMgr, dispatcher, hasher)

	authHandler := handlers.NewAuthHandler(service, cfg.RefreshTokenTTL, cfg.IsProduction())
	router := routing.InitRouter(databaseMgr, jwtMgr, authHandler, cfg.ClientURL)
	log.Info("Initialized router")

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		<-c
		log.Info("Server shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Error during shutdown: ", err)
		}
	}()

	log.Infof("Starting server on port %s...", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Error starting server: ", err)
	}
}

func initializeDatabase(cfg *config.Config) *pgxpool.Pool {
	log.Info("Initializing database")

	url := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Fatal("error configuring database: ", err)
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatal("error connecting to database: ", err)
	}
	log.Info("Connected to database")
	return pool
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)
	log.SetOutput(os.Stdout)
}
