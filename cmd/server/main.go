package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/container"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newInjector(options *container.Options) *do.Injector {
	injector := do.New()
	do.ProvideValue(injector, options)

	for _, register := range []func(*do.Injector){
		container.LoggerPackage,
		container.RedisPackage,
		container.PostgresPackage,
		container.SQLitePackage,
		container.RepositoryPackage,
		container.ServicePackage,
		container.RateLimitPackage,
		container.PublisherGroupPackage,
		container.HTTPPackage,
	} {
		register(injector)
	}

	return injector
}

// newServer resolves the router and registers every operation on it.
func newServer(injector *do.Injector, port int) *http.Server {
	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		if err := options.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		injector := newInjector(options)
		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			server = newServer(injector, options.Port)

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("store", options.Store),
				zap.String("generator", options.Generator),
				zap.Int("tokenLength", options.TokenLength),
				zap.Bool("events", options.Events),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("http shutdown failed", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("dependency shutdown failed", zap.Error(err))
			}

			logger.Info("server stopped")
			_ = logger.Sync()
		})
	})

	cli.Run()
}
