package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/crucial707/studybuddy/internal/answer"
	"github.com/crucial707/studybuddy/internal/auth"
	"github.com/crucial707/studybuddy/internal/config"
	"github.com/crucial707/studybuddy/internal/db"
	"github.com/crucial707/studybuddy/internal/export"
	"github.com/crucial707/studybuddy/internal/handlers"
	"github.com/crucial707/studybuddy/internal/mail"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/crucial707/studybuddy/internal/scheduler"
	"github.com/crucial707/studybuddy/internal/session"
	"github.com/crucial707/studybuddy/internal/speech"
	"github.com/crucial707/studybuddy/internal/vision"
	"github.com/gorilla/csrf"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled server: stores, pages, router and the reminder scheduler.
type App struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sql.DB // nil with the file user store
	handler http.Handler

	reminders *scheduler.Reminders
}

// newApp opens the user store named by cfg.UserStore and builds the app around it.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	switch cfg.UserStore {
	case "", "file":
		users, err := repo.NewFileUserRepo(cfg.Path("users.csv"))
		if err != nil {
			return nil, err
		}
		if cfg.WatchUsers {
			if err := users.Watch(ctx); err != nil {
				logger.Warn("user file watch disabled", "error", err)
			}
		}
		return buildApp(ctx, cfg, logger, users, nil)

	case "postgres":
		opts := db.Options{
			Host:         cfg.DBHost,
			Port:         cfg.DBPort,
			Name:         cfg.DBName,
			User:         cfg.DBUser,
			Password:     cfg.DBPass,
			MaxOpenConns: cfg.DBMaxOpenConns,
			MaxIdleConns: cfg.DBMaxIdleConns,
		}
		// Connect to database FIRST
		database, err := db.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		version, err := db.Migrate(opts.URL())
		if err != nil {
			database.Close()
			return nil, err
		}
		logger.Info("connected to the database", "host", cfg.DBHost, "db", cfg.DBName, "schema_version", version)
		app, err := buildApp(ctx, cfg, logger, repo.NewUserRepo(database), database)
		if err != nil {
			database.Close()
			return nil, err
		}
		return app, nil

	default:
		return nil, fmt.Errorf("unknown USER_STORE %q (want file or postgres)", cfg.UserStore)
	}
}

// buildApp wires everything on top of an open user store. database is only used for
// readiness checks and may be nil.
func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger, users repo.UserStore, database *sql.DB) (*App, error) {
	app := &App{cfg: cfg, logger: logger, db: database}

	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		return nil, err
	}
	sessions := session.NewCodec(secret, time.Duration(cfg.SessionHours)*time.Hour, cfg.TLSEnabled())

	plans, err := repo.NewPlanRepo(cfg.Path("study_plan.json"))
	if err != nil {
		return nil, err
	}
	exports := cfg.Path("exports")
	notes, err := repo.NewArtifactManager(cfg.Path("notes"), ".txt", exports, "all_notes.zip")
	if err != nil {
		return nil, err
	}
	texts, err := repo.NewArtifactManager(cfg.Path("texts"), ".txt", exports, "all_texts.zip")
	if err != nil {
		return nil, err
	}
	audios, err := repo.NewArtifactManager(cfg.Path("audios"), ".wav", exports, "all_audio.zip", "*.{wav,mp3}")
	if err != nil {
		return nil, err
	}

	sinks := []export.Sink{export.Local{}}
	if cfg.ExportS3Bucket != "" {
		s3, err := export.NewS3(ctx, cfg.ExportS3Bucket, cfg.ExportS3Prefix, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3)
		logger.Info("exports mirrored to s3", "bucket", cfg.ExportS3Bucket, "prefix", cfg.ExportS3Prefix)
	}

	features, err := handlers.LoadFeatures()
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	timeout := time.Duration(cfg.STTTimeoutSeconds) * time.Second
	var extractor vision.Extractor
	if cfg.FeatureExtractorURL != "" {
		extractor = vision.NewHTTPExtractor(cfg.FeatureExtractorURL, cfg.FeatureExtractorDim, timeout)
	}

	home := &handlers.HomePage{Features: features}
	registry := handlers.NewRegistry(map[handlers.PageID]handlers.PageHandler{
		handlers.PageHome:        home,
		handlers.PageSpeech:      handlers.NewSpeechPage(speech.New(cfg.STTURL, timeout), texts, audios, sinks...),
		handlers.PageNotes:       handlers.NewNotesPage(notes, sinks...),
		handlers.PageExam:        handlers.NewExamPage(nil),
		handlers.PagePlanner:     handlers.NewPlannerPage(plans, cfg.ReminderRecipient),
		handlers.PageTeachable:   handlers.NewTeachablePage(extractor, nil),
		handlers.PageTimetable:   handlers.NewTimetablePage(nil),
		handlers.PageDoubtSolver: handlers.NewDoubtsPage(answer.New(cfg.AnswerURL, timeout)),
		handlers.PageMentor:      handlers.NewMentorPage(nil),
	})

	routerCfg := handlers.RouterConfig{
		Auth: &handlers.AuthHandler{
			Auth:     auth.NewService(users, cfg.PasswordMode),
			Sessions: sessions,
			Features: features,
		},
		Home:           home,
		Registry:       registry,
		Sessions:       sessions,
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		HSTS:           cfg.TLSEnabled(),
		TrustProxy:     cfg.TrustProxy,
		Ready:          func(r *http.Request) error { return app.ping(r.Context()) },
	}
	if cfg.CSRFKey != "" {
		if len(cfg.CSRFKey) != 32 {
			return nil, errors.New("CSRF_KEY must be exactly 32 bytes")
		}
		routerCfg.CSRF = csrfProtect([]byte(cfg.CSRFKey), cfg.TLSEnabled())
	}
	app.handler = handlers.NewRouter(routerCfg)

	if cfg.ReminderRecipient != "" {
		to, err := mail.ParseRecipients(cfg.ReminderRecipient)
		if err != nil {
			return nil, err
		}
		sender, err := mail.New(cfg.MailProvider, cfg.SendGridAPIKey, cfg.MailAppName, cfg.MailFrom, logger)
		if err != nil {
			return nil, err
		}
		lead := time.Duration(cfg.ReminderLeadMinutes) * time.Minute
		app.reminders = scheduler.NewReminders(plans, sender, to, lead, logger)
	}
	return app, nil
}

// sessionSecret returns SESSION_SECRET, or a random secret outside prod.
func sessionSecret(cfg config.Config, logger *slog.Logger) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret), nil
	}
	if cfg.Env == "prod" {
		return nil, errors.New("SESSION_SECRET must be set when ENV=prod")
	}
	logger.Warn("SESSION_SECRET not set; using a random secret, sessions end on restart")
	return session.RandomSecret()
}

// csrfProtect wraps gorilla/csrf. Over plain HTTP the request is marked as such so
// the Referer check meant for HTTPS is skipped.
func csrfProtect(key []byte, tls bool) func(http.Handler) http.Handler {
	protect := csrf.Protect(key, csrf.Secure(tls), csrf.Path("/"), csrf.FieldName("csrf_token"))
	if tls {
		return protect
	}
	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

// ping reports whether the user store is reachable.
func (a *App) ping(ctx context.Context) error {
	if a.db != nil {
		return a.db.PingContext(ctx)
	}
	_, err := os.Stat(a.cfg.Path("users.csv"))
	return err
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.reminders != nil {
		stopReminders, err := a.reminders.Start(ctx, a.cfg.ReminderSpec)
		if err != nil {
			return err
		}
		defer stopReminders()
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		// Start server LAST
		a.logger.Info("starting server", "port", a.cfg.Port, "tls", a.cfg.TLSEnabled(), "user_store", a.cfg.UserStore)
		var err error
		if a.cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(a.cfg.TLSCertFile, a.cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
