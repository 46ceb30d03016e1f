// Package server wires the dogspotter components together and runs them:
// the Telegram bot, the ops HTTP endpoint and the gRPC health endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/dogspotter/internal/httpx"
	"github.com/dmitrijs2005/dogspotter/internal/logging"
	"github.com/dmitrijs2005/dogspotter/internal/server/blobstore"
	"github.com/dmitrijs2005/dogspotter/internal/server/bot"
	"github.com/dmitrijs2005/dogspotter/internal/server/classifier"
	"github.com/dmitrijs2005/dogspotter/internal/server/config"
	"github.com/dmitrijs2005/dogspotter/internal/server/httpapi"
	"github.com/dmitrijs2005/dogspotter/internal/server/intake"
	"github.com/dmitrijs2005/dogspotter/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dogspotter/internal/server/store"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/dogspotter/internal/server/grpc"
)

// downloadTimeout bounds a single Telegram file download including retries.
const downloadTimeout = time.Minute

// newBotAPI is a seam for tests; the real constructor calls getMe.
var newBotAPI = func(token string) (bot.API, error) {
	return tgbotapi.NewBotAPI(token)
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	pipeline *intake.Pipeline
	bot      *bot.Bot
	grpc     *gs.GRPCServer
	http     *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	sl := logging.NewJSONLogger(os.Stdout, c.LogLevel, c.TelegramToken)
	return newApp(ctx, c, sl)
}

func newApp(ctx context.Context, c *config.Config, sl *logging.SlogLogger) (*App, error) {
	app := &App{config: c, logger: sl}

	manager, err := app.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	blobs, err := app.openBlobStore(ctx)
	if err != nil {
		app.closeDB(ctx)
		return nil, err
	}

	detectorClient := httpx.NewClient(c.DetectorTimeout, httpx.WithLogger(sl.Slog().With("subsystem", "detector")))
	registry := classifier.NewRegistry(
		classifier.NewHTTPLoader(c.DetectorURL, detectorClient),
		classifier.Options{TargetClass: c.TargetClass, MinConfidence: c.MinConfidence},
		sl,
	)

	adapter := registry.Adapter(c.Model)
	sl.Info(ctx, "classifier configured", "model", adapter.Model(), "detector", c.DetectorURL)

	app.pipeline = intake.New(
		store.New(app.db, manager, sl),
		blobs,
		adapter,
		c.Policy(),
		sl,
	)

	if err := tgbotapi.SetLogger(bot.NewAPILogger(sl)); err != nil {
		app.closeDB(ctx)
		return nil, fmt.Errorf("telegram init error: %w", err)
	}
	api, err := newBotAPI(c.TelegramToken)
	if err != nil {
		app.closeDB(ctx)
		// the request URL in err carries the token
		return nil, fmt.Errorf("telegram init error: %w", httpx.StripURL(err))
	}

	downloadClient := httpx.NewClient(downloadTimeout,
		httpx.WithLogger(sl.Slog().With("subsystem", "telegram")),
		httpx.WithPassthroughErrors(),
	)
	opts := bot.DefaultOptions()
	opts.Workers = c.Workers
	app.bot = bot.New(api, app.pipeline, downloadClient, opts, sl)

	if c.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, sl)
	app.http = httpapi.NewServer(c.EndpointAddrHTTP, httpapi.NewRouter(app.pipeline, sl), c.ShutdownTimeout, sl)

	return app, nil
}

func (app *App) openStorage(ctx context.Context) (repomanager.RepositoryManager, error) {
	if repomanager.IsMemoryDSN(app.config.DatabaseDSN) {
		app.logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		app.closeDB(ctx)
		return nil, err
	}
	return manager, nil
}

func (app *App) openBlobStore(ctx context.Context) (blobstore.Store, error) {
	c := app.config
	switch c.BlobBackend {
	case config.BlobBackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
		})
	default:
		s, err := blobstore.NewFSStore(c.ImagesDir)
		if err != nil {
			return nil, err
		}
		app.logger.Debug(ctx, "images directory", "dir", s.Dir())
		return s, nil
	}
}

func (app *App) closeDB(ctx context.Context) {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "failed to close database", "error", err)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run blocks until ctx is cancelled, a signal arrives or one of the
// components fails; the others are then stopped as well.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "model", app.config.Model, "blob_backend", app.config.BlobBackend)

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(gctx) })
	g.Go(func() error { return app.http.Run(gctx) })
	g.Go(func() error { return app.bot.Run(gctx) })

	err := g.Wait()
	app.closeDB(ctx)

	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
		return err
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}
