// Command memorygame starts the Memory Match Game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config directory, debug logging, version output,
// and optional ngrok tunneling for easy external access during development.
// Runtime tuning (session TTL, cleanup interval, allowed origins, log format)
// comes from the environment, optionally via a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/memorygame/api"
	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/metrics"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
	"github.com/wricardo/mcp-training/memorygame/transport/mcp"
	"github.com/wricardo/mcp-training/memorygame/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Memory Match Game Server"
)

// services bundles everything one process serves
type services struct {
	game     service.GameService
	sessions *session.Manager
	configs  *config.Manager
	metrics  *metrics.Recorder
	hub      *websocket.Hub
}

// initializeServices wires config/session managers, metrics, the WebSocket
// hub and the game service. The hub is not running yet.
func initializeServices(configDir string, settings *Settings) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	recorder := metrics.NewRecorder(sessionManager.Count)
	hub := websocket.NewHub(websocket.WithAllowedOrigins(settings.AllowedOrigins))

	gameService := service.NewGameService(sessionManager, configManager,
		service.WithNotifier(hub),
		service.WithMetrics(recorder),
	)
	hub.SetActionHandler(api.NewActionHandler(gameService))
	sessionManager.OnRemove(hub.CloseSession)

	return &services{
		game:     gameService,
		sessions: sessionManager,
		configs:  configManager,
		metrics:  recorder,
		hub:      hub,
	}, nil
}

// start runs the hub and the session cleanup routine until ctx ends
func (s *services) start(ctx context.Context, settings *Settings) {
	go s.hub.Run()
	go sessionCleanupRoutine(ctx, s.sessions, settings.CleanupInterval, settings.SessionTTL)
}

// close stops the hub and every game clock
func (s *services) close() {
	s.hub.Stop()
	s.sessions.Close()
}

// newRouter combines the API server with the /mcp endpoint
func (s *services) newRouter(mcpClient *mcp.Client) http.Handler {
	apiServer := api.NewServer(s.game, s.hub, api.WithMetricsHandler(s.metrics.Handler()))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	if mcpClient != nil {
		mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))
	}
	return mainRouter
}

// mcpHandler answers single JSON-RPC messages posted to /mcp
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, metrics and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command, settings *Settings) error {
	svcs, err := initializeServices(cmd.String("config-dir"), settings)
	if err != nil {
		return err
	}
	svcs.start(ctx, settings)
	defer svcs.close()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := svcs.newRouter(mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)
		log.Info().Msgf("Metrics: http://%s/metrics", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd, mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx ends
func runNgrok(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	ngrokURL := tun.URL()
	log.Info().Str("url", ngrokURL).Msg("🚀 ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", ngrokURL)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a game server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/healthz")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// --host/--port; otherwise it starts an internal HTTP API bound to a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command, settings *Settings) error {
	baseURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	log.Info().Str("url", baseURL).Msg("checking for external API server")

	if externalAPIAvailable(baseURL) {
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		svcs, err := initializeServices(cmd.String("config-dir"), settings)
		if err != nil {
			return err
		}
		svcs.start(ctx, settings)
		defer svcs.close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalServer := &http.Server{Handler: svcs.newRouter(nil)}
		go func() {
			if err := internalServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer internalServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("url", baseURL).Msg("internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// newCommand builds the CLI. settings are read once at startup.
func newCommand(settings *Settings) *cli.Command {
	serve := func(ctx context.Context, cmd *cli.Command) error {
		return runHTTPServer(ctx, cmd, settings)
	}

	return &cli.Command{
		Name:    "memorygame",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := setupLogging(settings, cmd.Bool("debug")); err != nil {
				return ctx, err
			}
			log.Info().Str("version", Version).Msgf("starting %s", AppName)
			return ctx, nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, metrics and MCP endpoint (default)",
				Action:  serve,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, cmd, settings)
				},
			},
		},
	}
}

// main loads .env and settings, then runs the selected mode.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}

	if envErr == nil {
		log.Debug().Msg("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(settings).Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}
