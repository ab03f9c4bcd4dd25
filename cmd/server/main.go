package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/hello-world/internal/http/v1/routes"
	"github.com/janisto/hello-world/internal/platform/config"
	applog "github.com/janisto/hello-world/internal/platform/logging"
	appmiddleware "github.com/janisto/hello-world/internal/platform/middleware"
	"github.com/janisto/hello-world/internal/platform/respond"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	ctx := context.Background()
	defer func() {
		// stdout sync fails with EINVAL on some platforms; nothing to do about it here
		_ = applog.Sync()
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogError(ctx, "config error", err)
		os.Exit(1)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogWarn(ctx, "invalid log level, keeping info", zap.Error(err))
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		applog.LogError(ctx, "listen failed", err, zap.String("addr", cfg.Addr()))
		os.Exit(1)
	}
	if err := serve(sigCtx, ln, newServer(cfg, newRouter(cfg, Version)), cfg.ShutdownTimeout); err != nil {
		applog.LogError(ctx, "server error", err)
		os.Exit(1)
	}
	applog.LogInfo(ctx, "server exited")
}

func newRouter(cfg config.Config, version string) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(cfg.DocsPath, config.OpenAPIPath, config.SchemasPath),
		appmiddleware.Vary("Accept"),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// Trust X-Forwarded-For / X-Real-IP only behind a proxy that sets them.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(cfg.RequestMaxBytes),
		appmiddleware.RateLimit(cfg.RateLimitPerMinute, respond.TooManyRequestsHandler()),
		// HEAD falls back to the GET route where no HEAD route exists.
		chimiddleware.GetHead,
		applog.RequestLogger(cfg.ProjectID),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	humaCfg := huma.DefaultConfig("Hello World", version)
	humaCfg.DocsPath = cfg.DocsPath
	humaCfg.OpenAPIPath = config.OpenAPIPath
	humaCfg.SchemasPath = config.SchemasPath
	api := humachi.New(router, humaCfg)
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)

	routes.Register(router, api, cfg.HelloPath)
	return router
}

// addCBORContent advertises application/cbor wherever an operation speaks JSON.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}

func newServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}

// serve runs srv on ln until ctx is cancelled, then shuts down within timeout.
func serve(ctx context.Context, ln net.Listener, srv *http.Server, timeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("serve %s: %w", ln.Addr(), err)
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
