// Package main is the entry point of the server-identity background
// worker. It consumes the email queue and runs the nightly token sweeps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"server-identity/internal/config"
	"server-identity/internal/jobs"
	"server-identity/internal/managers"
	"server-identity/internal/querybuilder"
	"server-identity/internal/repositories"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	pingRedis(cfg.RedisAddr)

	pool := initializeDatabase(cfg)
	defer pool.Close()

	builder := querybuilder.New(pool, cfg.DBTimeout)
	tokens := repositories.NewTokenRepository(builder)

	emailJob := jobs.NewEmailJob(managers.NewMailManager(cfg))
	cleanupJob := jobs.NewCleanupJob(tokens)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"mail":    6,
			"default": 4,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TaskEmailDeliver, emailJob.Handle)
	mux.HandleFunc(jobs.TaskTokensCleanExpired, cleanupJob.HandleExpired)
	mux.HandleFunc(jobs.TaskTokensCleanUsed, cleanupJob.HandleUsed)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
	registerSweeps(scheduler)

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatal("Error running scheduler: ", err)
		}
	}()
	go func() {
		if err := server.Run(mux); err != nil {
			log.Fatal("Error running worker: ", err)
		}
	}()
	log.Info("Worker started")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info("Worker shutting down...")
	scheduler.Shutdown()
	server.Shutdown()
}

// registerSweeps schedules both token sweeps for midnight.
func registerSweeps(scheduler *asynq.Scheduler) {
	entries := map[string]string{
		jobs.TaskTokensCleanExpired: "0 0 * * *",
		jobs.TaskTokensCleanUsed:    "0 0 * * *",
	}
	for taskType, cron := range entries {
		if _, err := scheduler.Register(cron, asynq.NewTask(taskType, nil)); err != nil {
			log.Fatalf("Error scheduling %s: %v", taskType, err)
		}
	}
}

// pingRedis fails fast when the queue backend is unreachable, instead of
// letting the worker retry-loop against a misconfigured address.
func pingRedis(addr string) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("Error closing redis client: ", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Error reaching redis: ", err)
	}
	log.Info("Connected to redis")
}

func initializeDatabase(cfg *config.Config) *pgxpool.Pool {
	log.Info("Initializing database")

	url := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Fatal("error configuring database: ", err)
	}
	poolConfig.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatal("error connecting to database: ", err)
	}
	log.Info("Connected to database")
	return pool
}
