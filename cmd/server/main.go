package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/pantry-finder/internal/auth"
	"github.com/ukydev/pantry-finder/internal/config"
	"github.com/ukydev/pantry-finder/internal/db"
	"github.com/ukydev/pantry-finder/internal/handlers"
	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/source"
)

const version = "0.1.0"

const shutdownTimeout = 10 * time.Second

// maxSweepInterval caps how long an expired session may outlive its token.
const maxSweepInterval = time.Minute

func main() {
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	envFile := flag.String("env", ".env", "Optional env file")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		fmt.Printf("pantry-finder version %s\n", version)
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	cfg.ConfigureLogger(log.StandardLogger())
	if cfg.LogLevel < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	src, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	regCfg := handlers.RegistryConfig{
		Source:            src,
		TopicPrefix:       cfg.MQTTTopicPrefix,
		AccuracyThreshold: cfg.LocationAccuracyMeters,
		FetchTimeout:      cfg.FetchTimeout,
		SessionTTL:        cfg.JWTExpiry,
		Logger:            log.StandardLogger(),
	}
	if cfg.MQTTEnabled() {
		client, err := location.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, 10*time.Second)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		regCfg.Relay = location.NewMQTTRelay(client, log.StandardLogger())
		log.WithFields(log.Fields{
			"broker":       cfg.MQTTBroker,
			"topic_prefix": cfg.MQTTTopicPrefix,
		}).Info("Connected to MQTT broker")
	}

	registry := handlers.NewRegistry(regCfg)
	defer registry.Close()
	go registry.RunSweeper(ctx, min(cfg.JWTExpiry, maxSweepInterval))

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if cfg.JWTSecret == auth.DefaultSecret {
		log.Warn("JWT_SECRET not set, using the development default")
	}
	handler := handlers.NewPantryHandler(registry, authService, log.StandardLogger())
	router := handlers.SetupRouter(handler, handlers.RouterConfig{
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":          srv.Addr,
			"pantry_source": cfg.PantrySource,
		}).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// newSource builds the configured pantry source and its cleanup.
func newSource(ctx context.Context, cfg *config.Config) (source.Source, func(), error) {
	switch cfg.PantrySource {
	case config.SourceMongo:
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		coll := client.Database(cfg.MongoDB).Collection(cfg.MongoCollection)
		log.WithFields(log.Fields{
			"database":   cfg.MongoDB,
			"collection": cfg.MongoCollection,
		}).Info("Serving pantries from MongoDB")
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("MongoDB disconnect failed")
			}
		}
		return db.NewMongoSource(&db.MongoCollection{Collection: coll}), closeFn, nil
	case config.SourceHTTP:
		log.WithField("url", cfg.PantrySourceURL).Info("Serving pantries from HTTP feed")
		return source.NewHTTPSource(cfg.PantrySourceURL, cfg.FetchTimeout), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown pantry source %q", cfg.PantrySource)
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Pantry Finder Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -env FILE      Optional env file (default: .env)")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                       Server port (default: 8080)")
	fmt.Println("  PANTRY_SOURCE              http or mongo (default: http)")
	fmt.Println("  PANTRY_SOURCE_URL          Pantry JSON feed URL")
	fmt.Println("  FETCH_TIMEOUT              Per-fetch timeout (default: 15s)")
	fmt.Println("  MONGO_URI                  MongoDB connection string")
	fmt.Println("  MONGO_DB, MONGO_COLLECTION Pantry collection (default: pantries/pantries)")
	fmt.Println("  MQTT_BROKER                Broker for device fixes (default: disabled)")
	fmt.Println("  MQTT_TOPIC_PREFIX          Fix topic prefix (default: pantries/location)")
	fmt.Println("  LOCATION_ACCURACY_METERS   Trusted fix threshold (default: 100)")
	fmt.Println("  JWT_SECRET, JWT_EXPIRY     Session token signing (default expiry: 24h)")
	fmt.Println("  CORS_ALLOWED_ORIGINS       Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  RATE_LIMIT_REQUESTS        Requests per window on refresh (default: 30)")
	fmt.Println("  RATE_LIMIT_WINDOW_SECONDS  Rate limit window (default: 60)")
	fmt.Println("  LOG_LEVEL, LOG_FORMAT      logrus level and text|json (default: info, text)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET    /health               Health check")
	fmt.Println("  POST   /api/sessions         Start a session")
	fmt.Println("  GET    /api/view             Pantry list")
	fmt.Println("  GET    /api/map              Map annotations")
	fmt.Println("  GET    /api/pantries/:id     Pantry detail")
	fmt.Println("  PUT    /api/search           Set search text")
	fmt.Println("  PUT    /api/sort             Set sort mode")
	fmt.Println("  POST   /api/refresh          Refetch pantries")
	fmt.Println("  POST   /api/location         Report a location fix")
	fmt.Println("  PUT    /api/selection        Select a pantry")
	fmt.Println("  GET    /api/navigation       Navigation destination")
	fmt.Println("  GET    /api/export.xlsx      Spreadsheet export")
	fmt.Println("  DELETE /api/sessions         End the session")
	fmt.Println()
}
