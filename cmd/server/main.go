package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/firefades/pkg/api"
	authproviders "github.com/cbodonnell/firefades/pkg/auth/providers"
	"github.com/cbodonnell/firefades/pkg/game"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/network"
	"github.com/cbodonnell/firefades/pkg/queue"
	"github.com/cbodonnell/firefades/pkg/repositories"
	"github.com/cbodonnell/firefades/pkg/version"
	"github.com/cbodonnell/firefades/pkg/workers"
	"github.com/joho/godotenv"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	allowOrigin := flag.String("allow-origin", "*", "Allowed origin for browser clients")
	actionQueueSize := flag.Int("action-queue-size", 256, "Pending actions allowed per game")
	migrations := flag.String("migrations", "./migrations/sqlite", "SQLite migrations directory")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to load .env file: %v", err)
	}

	log.Info("Starting firefades server version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := newRepository(ctx, *migrations)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(context.Background())

	jwtSecret := os.Getenv("FIREFADES_JWT_SECRET")
	if jwtSecret == "" {
		panic("FIREFADES_JWT_SECRET environment variable must be set")
	}
	jwtProvider, err := authproviders.NewJWTAuthProvider(authproviders.NewJWTAuthProviderOptions{
		Secret: []byte(jwtSecret),
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create JWT auth provider: %v", err))
	}
	authChain := []authproviders.AuthProvider{jwtProvider}
	if firebaseProjectID := os.Getenv("FIREFADES_FIREBASE_PROJECT_ID"); firebaseProjectID != "" {
		firebaseProvider, err := authproviders.NewFirebaseAuthProvider(ctx, authproviders.NewFirebaseAuthProviderOptions{
			ProjectID:    firebaseProjectID,
			APIKey:       os.Getenv("FIREFADES_FIREBASE_API_KEY"),
			CheckRevoked: os.Getenv("FIREFADES_FIREBASE_CHECK_REVOKED") == "true",
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to create Firebase auth provider: %v", err))
		}
		authChain = append(authChain, firebaseProvider)
		log.Info("Firebase sign-in enabled for project %s", firebaseProjectID)
	}
	authProvider := authproviders.NewChainAuthProvider(authChain...)

	clientManager := network.NewClientManager()
	clientMessageQueue := queue.NewInMemoryQueue[*network.ClientMessage](10000)
	archiveQueue := queue.NewInMemoryQueue[game.ArchiveRequest](1000)

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		Repository:      repository,
		Broadcaster:     clientManager,
		ArchiveQueue:    archiveQueue,
		ActionQueueSize: *actionQueueSize,
	})

	log.Info("Starting game manager")
	if err := gameManager.Start(ctx); err != nil {
		panic(fmt.Sprintf("Failed to start game manager: %v", err))
	}

	clientMessageWorker := workers.NewClientMessageWorker(workers.NewClientMessageWorkerOptions{
		MessageQueue:  clientMessageQueue,
		GameRouter:    gameManager,
		Subscriptions: clientManager,
	})
	go clientMessageWorker.Start(ctx)

	connectionEventWorker := workers.NewConnectionEventWorker(workers.NewConnectionEventWorkerOptions{
		ClientEventChan: clientManager.GetClientEventChan(),
		GameRouter:      gameManager,
	})
	go connectionEventWorker.Start(ctx)

	archiveWorker := workers.NewArchiveWorker(workers.NewArchiveWorkerOptions{
		ArchiveQueue:  archiveQueue,
		Repository:    repository,
		Subscriptions: clientManager,
	})
	go archiveWorker.Start(ctx)

	wsServer := network.NewWSServer(network.NewWSServerOptions{
		AuthProvider:   authProvider,
		ClientManager:  clientManager,
		MessageQueue:   clientMessageQueue,
		OriginPatterns: originPatterns(*allowOrigin),
	})

	var tls *api.TLSConfig
	certFile, keyFile := os.Getenv("FIREFADES_TLS_CERT_FILE"), os.Getenv("FIREFADES_TLS_KEY_FILE")
	if certFile != "" && keyFile != "" {
		tls = &api.TLSConfig{
			CertFile: certFile,
			KeyFile:  keyFile,
		}
	}

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:             *port,
		TLS:              tls,
		AuthProvider:     authProvider,
		SessionIssuer:    jwtProvider,
		Games:            gameManager,
		WebsocketHandler: wsServer,
		AllowOrigin:      *allowOrigin,
	})
	go apiServer.Start()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
	gameManager.Wait()
}

func newRepository(ctx context.Context, migrations string) (repositories.Repository, error) {
	connStr := os.Getenv("FIREFADES_DATABASE_URL")
	if connStr == "" {
		connStr = "sqlite://firefades.db"
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		log.Info("Using SQLite database %s", u.Host+u.Path)
		return repositories.NewSQLiteRepository(ctx, u.Host+u.Path, migrations)
	case "postgresql", "postgres":
		log.Info("Using Postgres database %s", u.Host)
		return repositories.NewPostgresRepository(ctx, u.String())
	case "redis":
		log.Info("Using Redis database %s", u.Host)
		return repositories.NewRedisRepository(ctx, u.String())
	case "memory":
		log.Warn("Using in-memory storage: games are lost on restart")
		return repositories.NewInMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}

// originPatterns turns the allowed origin into websocket origin host patterns.
func originPatterns(allowOrigin string) []string {
	if allowOrigin == "*" {
		return []string{"*"}
	}
	u, err := url.Parse(allowOrigin)
	if err != nil || u.Host == "" {
		return []string{allowOrigin}
	}
	return []string{u.Host}
}
