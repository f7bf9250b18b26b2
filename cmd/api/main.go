// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"zonechat/internal/adapter/cache"
	"zonechat/internal/adapter/storage"
	"zonechat/internal/common/clock"
	"zonechat/internal/config"
	"zonechat/internal/domain/chat"
	"zonechat/internal/domain/identity"
	"zonechat/internal/server"
	"zonechat/internal/server/handlers"
	chatService "zonechat/internal/service/chat"
	geoService "zonechat/internal/service/geo"
	moderationService "zonechat/internal/service/moderation"
	sessionService "zonechat/internal/service/session"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize storage adapters
	zoneStore := cache.NewZoneCache(storage.NewZoneStore(db), redisClient, cfg.Zone.CacheTTL)
	sessionStore := storage.NewSessionStore(db)
	messageStore := storage.NewMessageStore(db)
	reportRegistry := cache.NewReportRegistry(redisClient)

	clk := clock.New()

	// Initialize services
	locator := geoService.NewLocator(zoneStore, geoService.Config{
		ToleranceMeters: cfg.Zone.MatchToleranceMeters,
	})

	rules, err := moderationService.LoadRuleSet(cfg.Moderation.RulesPath)
	if err != nil {
		log.Fatalf("Failed to load moderation rules: %v", err)
	}
	moderator := moderationService.New(rules)
	log.Printf("Loaded moderation rule set %s", moderator.RuleVersion())

	sessionManager := sessionService.NewManager(
		sessionStore,
		locator,
		reportRegistry,
		clk,
		sessionService.Config{
			TTL:             cfg.Session.TTL,
			BlockThreshold:  cfg.Session.BlockThreshold,
			SilenceDuration: cfg.Session.SilenceDuration,
			MinAge:          cfg.Session.MinAge,
			MaxAge:          cfg.Session.MaxAge,
		},
	)

	chatSvc := chatService.NewService(
		messageStore,
		sessionManager,
		moderator,
		natsConn,
		clk,
		chatService.Config{
			MessageLimit: cfg.RateLimit.MessageLimit,
			Cooldowns: map[chat.ContentType]time.Duration{
				chat.TypeText:    cfg.RateLimit.TextCooldown,
				chat.TypeSticker: cfg.RateLimit.StickerCooldown,
				chat.TypeGif:     cfg.RateLimit.GifCooldown,
				chat.TypeAudio:   cfg.RateLimit.AudioCooldown,
			},
			MaxAudioSeconds: cfg.RateLimit.MaxAudioSeconds,
			MessageTTL:      cfg.Session.TTL,
			FetchLimit:      cfg.RateLimit.FetchLimit,
		},
	)

	// Start the janitor
	janitor := chatService.NewJanitor(chatSvc, cfg.Cleanup.Interval)
	go janitor.Run(ctx)

	// Initialize HTTP server
	identities := identity.NewStaticService(cfg.Identity.AdminToken)
	registry := handlers.NewNatsRegistry(natsConn)

	httpServer := server.NewServer(
		cfg.Server,
		identities,
		sessionManager,
		chatSvc,
		zoneStore,
		registry,
		clk,
	)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	log.Println("Shutting down services...")

	// Stop the janitor
	cancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
