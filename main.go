// Command superslide runs the Super Slide sliding-block puzzle.
//
// It has three commands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, WebSocket snapshots and an /mcp endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays locally in the terminal
//
// Flags and SUPERSLIDE_* environment variables override the settings file.
// Optional ngrok tunneling gives the server a public URL during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/superslide/api"
	"github.com/wricardo/superslide/game/catalog"
	"github.com/wricardo/superslide/game/config"
	"github.com/wricardo/superslide/game/runs"
	"github.com/wricardo/superslide/game/service"
	"github.com/wricardo/superslide/game/session"
	"github.com/wricardo/superslide/transport/mcp"
	"github.com/wricardo/superslide/transport/terminal"
	"github.com/wricardo/superslide/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Super Slide"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "superslide",
		Usage:   "sliding-block puzzle server, MCP bridge and terminal client",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "YAML settings file (missing file uses defaults)",
				Value:   "superslide.yaml",
				Sources: cli.EnvVars("SUPERSLIDE_SETTINGS"),
			},
			&cli.StringFlag{
				Name:    "levels-dir",
				Usage:   "directory of level files (empty uses the built-in catalog)",
				Sources: cli.EnvVars("SUPERSLIDE_LEVELS_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("SUPERSLIDE_DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Flags:   append(serverFlags(), ngrokFlags()...),
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server backed by an external or internal HTTP API",
				Flags: append(serverFlags(), &cli.StringFlag{
					Name:  "api-url",
					Usage: "HTTP API to use before falling back to an internal server",
					Value: "http://localhost:8080",
				}),
				Action: runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "resume-file",
						Usage:   "where the resume level is kept",
						Sources: cli.EnvVars("SUPERSLIDE_RESUME_FILE"),
					},
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "log destination while the terminal is in use",
						Value: filepath.Join(os.TempDir(), "superslide.log"),
					},
					&cli.BoolFlag{
						Name:  "sound",
						Usage: "play tones",
						Value: true,
					},
				},
				Action: runPlay,
			},
		},
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Usage: "HTTP server host", Sources: cli.EnvVars("SUPERSLIDE_HOST")},
		&cli.IntFlag{Name: "port", Usage: "HTTP server port", Sources: cli.EnvVars("SUPERSLIDE_PORT")},
		&cli.StringFlag{Name: "sessions-dir", Usage: "directory for persisted sessions", Sources: cli.EnvVars("SUPERSLIDE_SESSIONS_DIR")},
		&cli.StringFlag{Name: "db-dsn", Usage: "MySQL DSN for runs (empty keeps them in memory)", Sources: cli.EnvVars("SUPERSLIDE_DB_DSN")},
		&cli.StringFlag{Name: "auth-secret", Usage: "secret signing player tokens", Sources: cli.EnvVars("SUPERSLIDE_AUTH_SECRET")},
	}
}

func ngrokFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}
}

// main loads .env, then runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadSettings reads the settings file and applies any flag that was set.
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	s, err := config.Load(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("levels-dir") {
		s.Paths.LevelsDir = cmd.String("levels-dir")
	}
	if cmd.IsSet("host") {
		s.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("sessions-dir") {
		s.Paths.SessionsDir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("db-dsn") {
		s.Database.DSN = cmd.String("db-dsn")
	}
	if cmd.IsSet("auth-secret") {
		s.Auth.Secret = cmd.String("auth-secret")
	}
	if cmd.IsSet("resume-file") {
		s.Paths.ResumeFile = cmd.String("resume-file")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// services is everything a server command wires together.
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence *session.FilePersistence
	runStore    runs.Store
}

// Close saves every session and releases the run store.
func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Printf("Warning: Failed to save sessions: %v", err)
	}
	s.sessions.Close()
	if closer, ok := s.runStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Printf("Warning: Failed to close run store: %v", err)
		}
	}
}

// initializeServices wires the catalog, session manager, run store and game
// service. Snapshots go to publisher, which may be nil.
func initializeServices(ctx context.Context, s *config.Settings, publisher session.Publisher) (*services, error) {
	levels, err := catalog.NewManager(s.Paths.LevelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}
	log.Printf("Loaded %d levels", levels.Count())

	persistence, err := session.NewFilePersistence(s.Paths.SessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessions := session.NewManager(session.Options{
		Catalog:     levels,
		Timing:      s.MachineTiming(),
		Thresholds:  s.Thresholds(),
		Publisher:   publisher,
		Persistence: persistence,
	})
	if err := sessions.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	var store runs.Store
	if s.Database.DSN != "" {
		mysqlStore, err := runs.OpenMySQL(ctx, s.Database.DSN)
		if err != nil {
			sessions.Close()
			return nil, fmt.Errorf("failed to open run database: %w", err)
		}
		log.Println("Recording runs in MySQL")
		store = mysqlStore
	} else {
		log.Println("Recording runs in memory")
		store = runs.NewMemoryStore()
	}

	var recorder service.RunRecorder
	var issuer service.TokenIssuer
	if s.Auth.Secret != "" {
		authority := runs.NewAuthority(s.Auth.Secret, s.Auth.Issuer, time.Duration(s.Auth.TokenTTL))
		recorder = runs.NewSubmitter(store, authority)
		issuer = authority
	} else {
		log.Println("Warning: no auth secret configured, run submission is disabled")
	}

	return &services{
		game:        service.NewGameService(sessions, levels, recorder, issuer),
		sessions:    sessions,
		persistence: persistence,
		runStore:    store,
	}, nil
}

// runServe starts the HTTP server with REST API, WebSocket hub and an /mcp
// endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log.Printf("Starting %s v%s", AppName, Version)

	hub := websocket.NewHub()
	go hub.Run()

	svcs, err := initializeServices(ctx, settings, hub)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Close()

	go sessionCleanupRoutine(ctx, svcs.sessions, time.Duration(settings.Sessions.CleanupInterval), time.Duration(settings.Sessions.MaxAge))
	go filesystemSyncRoutine(ctx, svcs.sessions, svcs.persistence, time.Duration(settings.Sessions.SyncInterval))

	apiServer := api.NewServer(svcs.game, hub)
	apiServer.SetLeaderboardLimit(settings.Leaderboard.Limit)

	addr := settings.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// mcpHandler answers MCP JSON-RPC messages posted over HTTP.
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
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

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// filesystemSyncRoutine periodically drops sessions whose files were deleted.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphanedSessions(manager, persistence); pruned > 0 {
				log.Printf("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
			}
		}
	}
}

// pruneOrphanedSessions removes in-memory sessions that have no file.
func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	if persistence == nil {
		return 0
	}
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			log.Printf("Pruned session %s from memory (file deleted)", s.ID)
		}
	}
	return pruned
}

// runStdioMCP runs an MCP stdio server. It reuses an external API when one
// answers at --api-url; otherwise it starts an internal HTTP API on a random
// loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	baseURL := cmd.String("api-url")
	log.Printf("Checking for external API server at %s...", baseURL)

	if !apiAvailable(baseURL) {
		log.Printf("No external API server found, starting internal HTTP server")

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		hub := websocket.NewHub()
		go hub.Run()

		svcs, err := initializeServices(ctx, settings, hub)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svcs.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		apiServer := api.NewServer(svcs.game, hub)
		apiServer.SetLeaderboardLimit(settings.Leaderboard.Limit)
		httpServer := &http.Server{Handler: apiServer}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Printf("Internal HTTP server on %s for MCP stdio", baseURL)
	} else {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a Super Slide API answers at baseURL.
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runPlay starts the terminal client. Logs go to --log-file because the
// terminal is taken over by the board.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cmd.String("log-file"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	defer log.SetOutput(os.Stderr)

	levels, err := catalog.NewManager(settings.Paths.LevelsDir)
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}

	return terminal.Play(ctx, terminal.Options{
		Catalog:    levels,
		Timing:     settings.MachineTiming(),
		Thresholds: settings.Thresholds(),
		ResumePath: settings.Paths.ResumeFile,
		Sound:      cmd.Bool("sound"),
	})
}
