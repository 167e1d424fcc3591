package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"shipgate/config"
	"shipgate/cooldown"
	"shipgate/courier"
	"shipgate/messaging"
	"shipgate/pipeline"
	"shipgate/store"
	"shipgate/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "shipgate.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("shipgate", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Shopify.APISecret == "" {
		log.Printf("shipgate: no webhook signing secret configured, all webhooks will be rejected")
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("shipgate: database open (%s)", cfg.Database.Driver)

	// Cooldown guard
	var guard cooldown.Guard
	switch cfg.Pipeline.CooldownBackend {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Printf("shipgate: redis not available (%v), falling back to in-memory cooldown", err)
			redisClient.Close()
			guard = cooldown.NewMemoryGuard(cfg.Pipeline.Cooldown)
		} else {
			log.Printf("shipgate: redis connected (%s)", cfg.Redis.Address)
			defer redisClient.Close()
			guard = cooldown.NewRedisGuard(redisClient, cfg.Pipeline.Cooldown)
		}
	default:
		guard = cooldown.NewMemoryGuard(cfg.Pipeline.Cooldown)
	}

	// Courier client
	courierClient := courier.NewClient(cfg.Courier.BaseURL, cfg.Courier.Timeout)
	log.Printf("shipgate: courier endpoint %s", courierClient.BaseURL())

	// Order transformer
	tf, err := pipeline.NewTransformer(cfg.Pipeline.PickupTimezone)
	if err != nil {
		log.Fatalf("transformer: %v", err)
	}

	// Messaging client + outbox drainer
	var msgClient *messaging.Client
	if cfg.Messaging.Enabled {
		msgClient = messaging.NewClient(&cfg.Messaging)
		if err := msgClient.Connect(); err != nil {
			log.Printf("shipgate: messaging connect failed (%v), events stay queued in outbox", err)
		} else {
			log.Printf("shipgate: messaging connected (kafka)")
		}
		defer msgClient.Close()

		drainer := messaging.NewOutboxDrainer(db, msgClient, cfg.Messaging.OutboxDrainInterval)
		drainer.Start()
		defer drainer.Stop()
	}

	// Pipeline processor
	processor := pipeline.NewProcessor(cfg, db, courierClient, guard, tf)

	// Web server
	handler := www.NewRouter(cfg, db, processor, msgClient)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("shipgate: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("shipgate: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("shipgate: shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("shipgate: stopped")
}
