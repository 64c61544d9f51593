package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"driftway/repositories"
	"driftway/server/middleware"
	"driftway/services"
)

type Config struct {
	Addr                 string
	ReadTimeout          time.Duration
	DeliveryTimeout      time.Duration
	SessionTTL           time.Duration
	ConnectionBufferSize int
	MaxContentLength     int
}

// App wires the HTTP surface: the REST routes, the websocket upgrade
// endpoint, and the middleware chain in front of both.
type App struct {
	log  *slog.Logger
	cfg  Config
	ctx  context.Context
	http *http.Server
	wg   sync.WaitGroup

	chatService   services.IChatService
	authService   services.IAuthService
	keyService    services.IKeyService
	conversations repositories.IConversationRepository
}

func NewApp(
	ctx context.Context,
	log *slog.Logger,
	cfg Config,
	chatService services.IChatService,
	authService services.IAuthService,
	keyService services.IKeyService,
	conversations repositories.IConversationRepository,
) *App {
	app := &App{
		log:           log,
		cfg:           cfg,
		ctx:           ctx,
		chatService:   chatService,
		authService:   authService,
		keyService:    keyService,
		conversations: conversations,
	}

	private := middleware.NewSessionAuth(log, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /up", app.handleUp)
	mux.HandleFunc("POST /api/auth/register", app.handleRegister)
	mux.HandleFunc("POST /api/auth/login", app.handleLogin)
	mux.Handle("POST /api/auth/logout", private(http.HandlerFunc(app.handleLogout)))
	mux.Handle("POST /api/conversations", private(http.HandlerFunc(app.handleCreateConversation)))
	mux.Handle("GET /api/conversations/{id}", private(http.HandlerFunc(app.handleGetConversation)))
	mux.Handle("GET /api/conversations/{id}/messages", private(http.HandlerFunc(app.handleGetMessages)))
	mux.Handle("GET /api/messages/search", private(http.HandlerFunc(app.handleSearchMessages)))
	mux.Handle("POST /api/conversations/{id}/key", private(http.HandlerFunc(app.handleActivateKey)))
	mux.Handle("GET /api/conversations/{id}/key", private(http.HandlerFunc(app.handleGetKey)))
	mux.Handle("DELETE /api/conversations/{id}/key", private(http.HandlerFunc(app.handleDeactivateKey)))
	mux.Handle("GET /ws", private(http.HandlerFunc(app.handleWS)))

	handler := middleware.Chain(mux,
		middleware.WithMetadata(),
		middleware.NewRequestLogger(log),
	)

	app.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	return app
}

// Handler exposes the full middleware-wrapped mux for tests.
func (a *App) Handler() http.Handler {
	return a.http.Handler
}

// Run serves until the app context is cancelled, then shuts down
// gracefully.
func (a *App) Run() error {
	errChan := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server starting", slog.String("addr", a.http.Addr))
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-a.ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) shutdown() error {
	a.log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Websocket sessions watch the app context; wait for their cleanup
	// to land so disconnect broadcasts are not lost on the way out.
	a.wg.Wait()
	a.log.Info("HTTP server stopped")
	return nil
}
