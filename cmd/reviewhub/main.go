package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/efisher/reviewhub/internal/adapter/driven/dispatch"
	sqliteadapter "github.com/efisher/reviewhub/internal/adapter/driven/sqlite"
	httphandler "github.com/efisher/reviewhub/internal/adapter/driving/http"
	"github.com/efisher/reviewhub/internal/application"
	"github.com/efisher/reviewhub/internal/config"
	"github.com/efisher/reviewhub/internal/extension"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"send_review_mail", cfg.SendReviewMail,
		"require_sitewide_login", cfg.RequireSitewideLogin,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	userStore := sqliteadapter.NewUserRepo(db)
	siteStore := sqliteadapter.NewSiteRepo(db)
	groupStore := sqliteadapter.NewGroupRepo(db)
	repositoryStore := sqliteadapter.NewRepositoryRepo(db)
	requestStore := sqliteadapter.NewRequestRepo(db)
	draftStore := sqliteadapter.NewDraftRepo(db)
	reviewStore := sqliteadapter.NewReviewRepo(db)
	commentStore := sqliteadapter.NewCommentRepo(db)
	diffStore := sqliteadapter.NewDiffRepo(db)
	screenshotStore := sqliteadapter.NewScreenshotRepo(db)
	watchStore := sqliteadapter.NewWatchRepo(db)

	notifier := dispatch.NewLogDispatcher(slog.Default())

	// 6. Wire application services.
	perms := application.NewPermissions(siteStore, groupStore)
	resolver := application.NewRecipientResolver(userStore, groupStore)

	requestSvc := application.NewRequestService(requestStore, userStore, repositoryStore, watchStore, perms)
	draftSvc := application.NewDraftService(draftStore, requestStore, userStore, groupStore, perms, resolver, notifier, cfg.SendReviewMail)
	reviewSvc := application.NewReviewService(reviewStore, requestStore, commentStore, diffStore, screenshotStore, perms, resolver, notifier, cfg.SendReviewMail)
	diffSvc := application.NewDiffService(diffStore, screenshotStore, draftStore, requestStore, perms)

	// 7. Extension hook registry. Extensions register at startup.
	registry := extension.NewRegistry()

	// 8. HTTP handler and server.
	apiHandler := httphandler.NewHandler(requestSvc, draftSvc, reviewSvc, diffSvc, userStore, siteStore, groupStore, registry, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, cfg.RequireSitewideLogin, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("reviewhub started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
