package application

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/board-settings/internal/api"
	"github.com/eugenenazirov/board-settings/internal/config"
	"github.com/eugenenazirov/board-settings/internal/settings"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	board   settings.Settings
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := settings.Validate(cfg.Board); err != nil {
		return nil, err
	}

	handler := api.NewHandler(cfg.Board, logger)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	LogSettings(logger, cfg.Board)

	return &App{
		board:   cfg.Board,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// LogSettings logs a summary of the board at info level and every table
// entry at debug level.
func LogSettings(logger *zap.Logger, board settings.Settings) {
	ledKind := settings.LEDKind("")
	if board.LED != nil {
		ledKind = board.LED.Kind()
	}
	logger.Info("board settings loaded",
		zap.String("board", board.Identity.Name),
		zap.String("vendor", board.Identity.Vendor),
		zap.String("firmware_version", board.Identity.FirmwareVersion),
		zap.String("led", string(ledKind)),
		zap.Stringer("timer", board.Timer),
		zap.Bool("captive_portal", board.CaptivePortal),
	)
	for _, v := range settings.Table(board) {
		logger.Debug("setting",
			zap.String("name", v.Name),
			zap.Any("value", v.Value),
			zap.String("semantic", string(v.Semantic)),
			zap.Bool("active", v.Active),
		)
	}
}

// BuildRootHandler constructs the root HTTP handler that routes API requests
// and sends the bare root to the settings view.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/settings", http.StatusFound)
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
