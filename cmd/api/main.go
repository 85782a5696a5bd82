package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	s3infra "github.com/go-notify-api/internal/infrastructure/s3"
	"github.com/go-notify-api/internal/infrastructure/sns"
	"github.com/go-notify-api/internal/infrastructure/webpush"
	"github.com/go-notify-api/internal/targeting"
	transporthttp "github.com/go-notify-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	rules := loadRules(context.Background(), cfg)
	log.Printf("Targeting rules active: version=%s mappings=%d", rules.Version(), rules.Len())

	// JWT provider (optional, with graceful fallback if the key is missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// Web Push sender. Without VAPID keys every send fails and gets logged,
	// so complain once up front.
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		log.Println("WARN: VAPID keys not configured, push delivery disabled")
	}
	pushSender := webpush.NewSender(cfg)

	// SNS SMS sender (optional, with graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		SubscriptionRepo: dynamo.NewSubscriptionRepo(dynamoClient, cfg.DynamoTables.Subscriptions),
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ApprovalRepo:     dynamo.NewApprovalRepo(dynamoClient, cfg.DynamoTables.Approvals),
		Rules:            rules,
		PushSender:       pushSender,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
		Log:              slog.Default(),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// loadRules picks the targeting rule source: S3 wins over a local file, the
// compiled-in defaults back both. A configured source that fails to load is
// fatal; silently starting with defaults would misroute notifications.
func loadRules(ctx context.Context, cfg *config.Config) *targeting.RuleSet {
	if cfg.TargetRulesS3Bucket != "" && cfg.TargetRulesS3Key != "" {
		store := s3infra.NewStore(s3infra.NewClient(cfg), cfg.TargetRulesS3Bucket)
		rs, err := targeting.LoadObject(ctx, store, cfg.TargetRulesS3Key)
		if err != nil {
			log.Fatalf("targeting rules from s3://%s/%s: %v", cfg.TargetRulesS3Bucket, cfg.TargetRulesS3Key, err)
		}
		return rs
	}
	if cfg.TargetRulesFile != "" {
		rs, err := targeting.LoadFile(cfg.TargetRulesFile)
		if err != nil {
			log.Fatalf("targeting rules file %s: %v", cfg.TargetRulesFile, err)
		}
		return rs
	}
	return targeting.Default()
}
