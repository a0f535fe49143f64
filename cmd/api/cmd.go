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

	"github.com/GregMSThompson/findash-backend/internal/bootstrap"
	fetchclient "github.com/GregMSThompson/findash-backend/internal/client/fetch"
	llmclient "github.com/GregMSThompson/findash-backend/internal/client/llm"
	"github.com/GregMSThompson/findash-backend/internal/config"
	"github.com/GregMSThompson/findash-backend/internal/handlers"
	"github.com/GregMSThompson/findash-backend/internal/middleware"
	"github.com/GregMSThompson/findash-backend/internal/refresh"
	"github.com/GregMSThompson/findash-backend/internal/response"
	"github.com/GregMSThompson/findash-backend/internal/router"
	"github.com/GregMSThompson/findash-backend/internal/services"
	"github.com/GregMSThompson/findash-backend/internal/store"
)

const shutdownTimeout = 15 * time.Second

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// clients
	fetcher := fetchclient.New(cfg.FetchTimeout)
	llmOpts := llmclient.Options{
		GeminiModel:   cfg.GeminiModel,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}
	if bs.Vertex != nil {
		llmOpts.Vertex = bs.Vertex
	}
	llms := llmclient.NewRegistry(bs.Log, llmOpts)

	// stores
	dstore := store.NewDashboardStateStore(bs.Backend)
	pstore := store.NewProviderStore(bs.Backend, bs.Cipher)
	sstore := store.NewSettingsStore(bs.Backend, bs.Cipher)
	cstore := store.NewChatStore(bs.Backend)

	// templates
	templates, err := services.LoadTemplates()
	exitOnError("templates failed to load", err, bs.Log)

	// services
	pipeline := services.NewWidgetPipeline(fetcher, pstore)
	scheduler := refresh.NewScheduler(bs.Log, pipeline.Run, refresh.NewSlots())
	dserv := services.NewDashboardService(dstore, pipeline, scheduler, templates)
	pserv := services.NewProviderService(pstore, fetcher)
	fserv := services.NewFieldService(fetcher, cfg.FieldDebounce)
	aiserv := services.NewAIService(llms, sstore, cstore, services.AIOptions{
		DefaultPlatform: cfg.AIPlatform,
		VertexAvailable: bs.Vertex != nil,
	})

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.DashboardSvc = dserv
	deps.ProviderSvc = pserv
	deps.FieldSvc = fserv
	deps.AISvc = aiserv

	// router
	opts := router.Options{RateLimit: cfg.RateLimit, RateBurst: cfg.RateBurst}
	if cfg.AuthMode == config.AuthFirebase {
		opts.Auth = middleware.NewMiddleware(bs.Firebase).FirebaseAuth
	}
	r := router.NewRouter(deps, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start()
	go func() {
		bs.Log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			bs.Log.Error("server start failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	bs.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		bs.Log.Error("server shutdown failed", "error", err)
	}
	scheduler.Stop()
}
