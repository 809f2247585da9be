package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fivestackbot/fivestack/internal/config"
	"github.com/fivestackbot/fivestack/internal/domain/activity"
	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/fivestackbot/fivestack/internal/domain/signup"
	"github.com/fivestackbot/fivestack/internal/keepalive"
	"github.com/fivestackbot/fivestack/internal/render"
	"github.com/fivestackbot/fivestack/internal/sqlite"
	"github.com/fivestackbot/fivestack/internal/transport"
	"github.com/fivestackbot/fivestack/migrations"
)

// Default role glyphs shown next to roster entries. Gateways with their own
// emoji sets can override these via a custom EmojiResolver.
var defaultRoleGlyphs = render.StaticEmoji{
	roster.RoleTop:     "🛡️",
	roster.RoleJungle:  "🌲",
	roster.RoleMid:     "✨",
	roster.RoleADC:     "🏹",
	roster.RoleSupport: "❤️",
	roster.RoleFill:    "🎲",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logWriter := io.Writer(os.Stdout)
	if logPath := os.Getenv("FIVESTACK_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runEmbeddedMigrations(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	sessionRepo := sqlite.NewSessionRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	activitySvc := activity.NewService(activityRepo, logger)
	registry := roster.NewRegistry(cfg.Roster.Capacity)
	presenter := render.Presenter{Emoji: defaultRoleGlyphs}
	feed := transport.NewFeed(logger)

	signupSvc := signup.NewService(registry, sessionRepo, activitySvc, presenter, feed, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := signupSvc.Restore(ctx); err != nil {
		logger.Error("failed to restore open sessions", "error", err)
		os.Exit(1)
	}

	sweeper := keepalive.NewSweeper(signupSvc, cfg.Keepalive.SweepInterval, cfg.Keepalive.IdleTimeout, logger)
	go sweeper.Run(ctx)

	if cfg.Auth.APIToken == "" {
		logger.Warn("no api token configured, requests are unauthenticated")
	}
	router := transport.NewServer(
		signupSvc,
		feed,
		transport.AuthMiddleware(cfg.Auth.APIToken, cfg.Auth.AdminToken),
		logger,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "capacity", cfg.Roster.Capacity)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func runEmbeddedMigrations(db *sqlite.DB) error {
	data, err := migrations.FS.ReadFile("001_initial_schema.up.sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	if _, err := db.Exec(string(data)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

// truncateIfNeeded keeps the tail of the log once it outgrows the cap.
func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.Seek(size-keepLogSizeBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}
