package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/vborodin/storefront/internal/api"
	"github.com/vborodin/storefront/internal/cart"
	"github.com/vborodin/storefront/internal/catalog"
	"github.com/vborodin/storefront/internal/catalog/cache"
	"github.com/vborodin/storefront/internal/checkout"
	"github.com/vborodin/storefront/internal/orders"
	"github.com/vborodin/storefront/internal/repository"
)

type Config struct {
	HTTPPort        string
	CatalogBaseURL  string
	OrdersBaseURL   string
	RedisAddr       string
	MongoURI        string
	MongoDatabase   string
	CartDBPath      string
	MigrationsPath  string
	KafkaBrokers    []string
	KafkaTopic      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CatalogBaseURL:  getEnv("CATALOG_BASE_URL", "http://localhost:9000/api"),
		OrdersBaseURL:   getEnv("ORDERS_BASE_URL", "http://localhost:9100/api"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "storefront"),
		CartDBPath:      getEnv("CART_DB_PATH", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "order-events"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("storefront engine starting...")

	cfg := loadConfig()
	ctx := context.Background()

	// Cart persistence: Mongo, then SQLite, then in-memory.
	var repo repository.CartRepository
	switch {
	case cfg.MongoURI != "":
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		repo = repository.NewMongoRepository(db, repository.DefaultNamespace)
		log.Printf("Cart persistence: mongodb (%s)", cfg.MongoDatabase)
	case cfg.CartDBPath != "":
		sqliteRepo, err := repository.NewSQLiteRepository(cfg.CartDBPath, repository.DefaultNamespace)
		if err != nil {
			log.Fatalf("Failed to open cart database: %v", err)
		}
		defer sqliteRepo.Close()
		if err := sqliteRepo.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Printf("Cart persistence: sqlite (%s)", cfg.CartDBPath)
		repo = sqliteRepo
	default:
		repo = repository.NewMemoryRepository()
		log.Println("Cart persistence: in-memory")
	}

	// Catalog cache: Redis when configured, in-process otherwise.
	var catalogCache cache.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		catalogCache = cache.NewRedisCache(client, cache.DefaultTTL)
		log.Printf("Catalog cache: redis (%s)", cfg.RedisAddr)
	} else {
		catalogCache = cache.NewMemoryCache(cache.DefaultTTL, nil)
		log.Println("Catalog cache: in-memory")
	}

	catalogClient := catalog.NewCachedClient(
		catalog.NewHTTPClient(cfg.CatalogBaseURL, cfg.RequestTimeout),
		catalogCache,
	)

	cartStore := cart.NewStore(ctx, repo)
	submitter := orders.NewClient(cfg.OrdersBaseURL, cfg.RequestTimeout)

	flowOpts := []checkout.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := orders.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		flowOpts = append(flowOpts, checkout.WithEventSink(publisher))
		log.Printf("Order events: kafka (%s)", strings.Join(cfg.KafkaBrokers, ","))
	}
	flow := checkout.NewFlow(cartStore, submitter, flowOpts...)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	api.AddRoutes(r,
		api.NewCartHandler(cartStore, catalogClient),
		api.NewCheckoutHandler(flow),
		api.NewProductHandler(catalogClient),
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Printf("Storefront engine listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront engine...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	log.Println("Storefront engine stopped")
}
