package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"poznote/internal/auth"
	"poznote/internal/config"
	"poznote/internal/handler"
	"poznote/internal/middleware"
	"poznote/internal/repository/postgres"
	"poznote/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
	)

	// Session token verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWTSecret, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Run embedded schema migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	noteRepo := postgres.NewNoteRepository(repoConfig)
	shareRepo := postgres.NewShareRepository(repoConfig)
	registryRepo := postgres.NewRegistryRepository(repoConfig)
	workspaceRepo := postgres.NewWorkspaceRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services
	shareService := service.NewShareService(shareRepo, registryRepo, noteRepo, folderRepo, txManager, cfg.PublicBaseURL, logger)
	folderService := service.NewFolderService(folderRepo, noteRepo, workspaceRepo, shareService, txManager, logger)

	// Create handlers
	folderHandler := handler.NewFolderHandler(folderService, logger)
	noteFolderHandler := handler.NewNoteFolderHandler(folderService, logger)
	shareHandler := handler.NewShareHandler(shareService, logger)
	publicHandler := handler.NewPublicHandler(shareService, logger)
	systemHandler := handler.NewSystemHandler(shareService, logger)

	logger.Info("services initialized")

	// Authenticated API routes (Go 1.22+ enhanced patterns)
	api := http.NewServeMux()

	// Folder routes
	api.HandleFunc("GET /api/v1/folders", folderHandler.ListFolders)
	api.HandleFunc("POST /api/v1/folders", folderHandler.CreateFolder)
	api.HandleFunc("GET /api/v1/folders/counts", folderHandler.AllCounts)
	api.HandleFunc("POST /api/v1/folders/move-files", folderHandler.MoveFiles)
	api.HandleFunc("GET /api/v1/folders/{id}", folderHandler.GetFolder)
	api.HandleFunc("PATCH /api/v1/folders/{id}", folderHandler.RenameFolder)
	api.HandleFunc("DELETE /api/v1/folders/{id}", folderHandler.DeleteFolder)
	api.HandleFunc("POST /api/v1/folders/{id}/move", folderHandler.MoveFolder)
	api.HandleFunc("POST /api/v1/folders/{id}/empty", folderHandler.EmptyFolder)
	api.HandleFunc("PUT /api/v1/folders/{id}/icon", folderHandler.UpdateIcon)
	api.HandleFunc("GET /api/v1/folders/{id}/notes", folderHandler.CountFolderNotes)
	api.HandleFunc("GET /api/v1/folders/{id}/path", folderHandler.GetPath)

	// Folder share routes
	api.HandleFunc("GET /api/v1/folders/{id}/share", shareHandler.FolderShareStatus)
	api.HandleFunc("POST /api/v1/folders/{id}/share", shareHandler.ShareFolder)
	api.HandleFunc("PATCH /api/v1/folders/{id}/share", shareHandler.UpdateFolderShare)
	api.HandleFunc("DELETE /api/v1/folders/{id}/share", shareHandler.UnshareFolder)

	// Note share routes
	api.HandleFunc("GET /api/v1/notes/{id}/share", shareHandler.NoteShareStatus)
	api.HandleFunc("POST /api/v1/notes/{id}/share", shareHandler.ShareNote)
	api.HandleFunc("PATCH /api/v1/notes/{id}/share", shareHandler.UpdateNoteShare)
	api.HandleFunc("DELETE /api/v1/notes/{id}/share", shareHandler.UnshareNote)

	// Note folder routes
	api.HandleFunc("POST /api/v1/notes/{id}/folder", noteFolderHandler.MoveNote)
	api.HandleFunc("POST /api/v1/notes/{id}/remove-folder", noteFolderHandler.RemoveFromFolder)

	// Maintenance
	api.HandleFunc("POST /api/v1/system/repair-shares", systemHandler.RepairShares)

	// Root mux: public routes stay outside the auth middleware
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", systemHandler.HealthCheck)
	mux.HandleFunc("GET /api/v1/public/{token}", publicHandler.ResolveToken)
	mux.Handle("/api/v1/", middleware.Auth(jwtVerifier)(api))

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestID → Recovery → Routes
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestID(root)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shut down cleanly on SIGINT/SIGTERM
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
