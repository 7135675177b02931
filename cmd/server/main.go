package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"distributed-lru-cache/internal/handlers"
	"distributed-lru-cache/internal/realtime"
	"distributed-lru-cache/internal/routes"
	"distributed-lru-cache/internal/store"
	"distributed-lru-cache/internal/store/memory"
	"distributed-lru-cache/internal/store/redis"
	"distributed-lru-cache/internal/store/sqlite"

	"golang.org/x/crypto/bcrypt"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newStore selects the backend from the environment:
// CACHE_BACKEND=memory (default, with CACHE_SWEEP_SECONDS for the
// cleanup interval), sqlite (CACHE_SQLITE_PATH), or redis
// (CACHE_REDIS_ADDR, CACHE_REDIS_PASSWORD, CACHE_REDIS_DB).
func newStore() store.Store {
	switch backend := getEnv("CACHE_BACKEND", "memory"); backend {
	case "memory":
		interval := time.Duration(0)
		if secs, err := strconv.Atoi(getEnv("CACHE_SWEEP_SECONDS", "60")); err == nil && secs > 0 {
			interval = time.Duration(secs) * time.Second
		}
		return memory.New(memory.Options{CleanupInterval: interval})
	case "sqlite":
		s, err := sqlite.Open(getEnv("CACHE_SQLITE_PATH", "cache-store.db"))
		if err != nil {
			log.Fatal("Failed to open sqlite store: ", err)
		}
		return s
	case "redis":
		db, _ := strconv.Atoi(getEnv("CACHE_REDIS_DB", "0"))
		s := redis.New(redis.Options{
			Addr:     getEnv("CACHE_REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("CACHE_REDIS_PASSWORD"),
			DB:       db,
		})
		if err := s.Ping(); err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		return s
	default:
		log.Fatalf("Unknown CACHE_BACKEND %q", backend)
		return nil
	}
}

func main() {
	backing := newStore()

	// The API key is shared out of band; only its bcrypt hash is held.
	apiKey := getEnv("CACHE_API_KEY", "development-insecure-api-key")
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash API key: ", err)
	}

	api := &handlers.API{
		Store:      backing,
		Hub:        realtime.NewHub(),
		APIKeyHash: hash,
	}
	ginRoutes := routes.SetupRoutes(api)

	// Start server
	port := ":" + getEnv("CACHE_PORT", "8010")
	log.Printf("Cache store server starting on port %s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/token")
	log.Println("  GET    /api/store/keys/:key")
	log.Println("  PUT    /api/store/keys/:key")
	log.Println("  DELETE /api/store/keys/:key")
	log.Println("  GET    /api/store/keys/:key/exists")
	log.Println("  GET    /api/store/lists/:key")
	log.Println("  GET    /api/store/lists/:key/index/:index")
	log.Println("  POST   /api/store/lists/:key/remove")
	log.Println("  POST   /api/store/lists/:key/push")
	log.Println("  POST   /api/store/counters/:key/incr")
	log.Println("  POST   /api/store/counters/:key/decr")
	log.Println("  POST   /api/store/pipeline")
	log.Println("  GET    /api/ws/events")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
