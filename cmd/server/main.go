package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/analytics"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/api"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/cache"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/config"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/dashboard"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/distlock"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/logger"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/source"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w\n"+
			"  Hint: run 'lsof -i %s' to find the blocking process", addr, err, addr)
	}
	return ln.Close()
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config (optional)")
	flag.Parse()

	log.Println("[server] lead conversation dashboard starting")

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("[server] failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[server] invalid config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.Redact())
	sink := logger.Default()

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		log.Fatalf("[server] pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader, err := source.New(ctx, cfg.Source, sink)
	if err != nil {
		log.Fatalf("[server] failed to initialize source: %v", err)
	}
	log.Printf("[server] source: %s", loader.Name())

	var db *sql.DB
	if pg, ok := loader.(*source.PostgresLoader); ok {
		db = pg.DB()
		defer pg.Close()
	}

	opts := []dashboard.Option{
		dashboard.WithLogger(sink),
		dashboard.WithNormalizer(normalize.New(normalize.WithLogger(sink))),
		dashboard.WithAnalyzer(analytics.New(
			analytics.WithLogger(sink),
			analytics.WithWindowDays(cfg.Analytics.WindowDays),
			analytics.WithHighValueThreshold(cfg.Analytics.HighValueThreshold),
		)),
		dashboard.WithInterval(cfg.Analytics.RefreshInterval()),
		dashboard.WithLoadTimeout(cfg.Source.Timeout()),
	}

	var redisClient redis.UniversalClient
	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			log.Printf("[server] Warning: Redis unavailable (%s): %v, serving from memory only", cfg.Cache.RedisAddr, err)
		} else {
			redisClient = client
			defer client.Close()
			store := cache.NewSnapshotCache(client, cfg.Cache.Key, cfg.Cache.TTL())
			opts = append(opts, dashboard.WithStore(store))
			log.Printf("[server] snapshot cache: redis %s key=%s ttl=%s", cfg.Cache.RedisAddr, store.Key(), cfg.Cache.TTL())
		}
	}

	lock := distlock.NewLock(redisClient, db, "refresh:"+cfg.Cache.Key, cfg.Cache.LockTTL())
	opts = append(opts, dashboard.WithLock(lock))

	svc := dashboard.NewService(loader, opts...)
	go svc.Start(ctx)

	server := api.NewServer(cfg.Server, svc, redisClient)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("[server] listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] server error: %v", err)
		}
	}()

	<-done
	log.Println("[server] shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown error: %v", err)
	}

	log.Println("[server] stopped")
}
