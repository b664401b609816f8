package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/firefades/pkg/api/handlers"
	"github.com/cbodonnell/firefades/pkg/api/middleware"
	authproviders "github.com/cbodonnell/firefades/pkg/auth/providers"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port          int
	TLS           *TLSConfig
	AuthProvider  authproviders.AuthProvider
	SessionIssuer handlers.SessionIssuer
	Games         handlers.GameService
	// WebsocketHandler serves /ws. It authenticates connections itself.
	WebsocketHandler http.Handler
	// AllowOrigin is sent as Access-Control-Allow-Origin.
	AllowOrigin string
}

// NewAPIServer creates a new http.Server for handling API and websocket requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter builds the routes served by the APIServer.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	allowOrigin := opts.AllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	authMiddleware := middleware.NewAuthMiddleware(opts.AuthProvider)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handlers.HandleHealth()).Methods(http.MethodGet)
	if opts.WebsocketHandler != nil {
		r.Handle("/ws", opts.WebsocketHandler)
	}

	cors := middleware.NewCORSMiddleware(allowOrigin)
	if opts.SessionIssuer != nil {
		sessions := r.PathPrefix("/sessions").Subrouter()
		sessions.Use(cors)
		sessions.HandleFunc("/anonymous", handlers.HandleIssueAnonymousSession(opts.SessionIssuer)).Methods(http.MethodPost, http.MethodOptions)
	}

	games := r.PathPrefix("/games").Subrouter()
	// preflight requests are answered before authentication
	games.Use(cors)
	games.Use(authMiddleware)
	games.HandleFunc("", handlers.HandleCreateGame(opts.Games)).Methods(http.MethodPost, http.MethodOptions)
	games.HandleFunc("/{code}", handlers.HandleGetGame(opts.Games)).Methods(http.MethodGet, http.MethodOptions)
	games.HandleFunc("/{code}/join", handlers.HandleJoinGame(opts.Games)).Methods(http.MethodPost, http.MethodOptions)
	games.HandleFunc("/{code}/leave", handlers.HandleLeaveGame(opts.Games)).Methods(http.MethodPost, http.MethodOptions)
	games.HandleFunc("/{code}/start", handlers.HandleStartGame(opts.Games)).Methods(http.MethodPost, http.MethodOptions)

	return r
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
