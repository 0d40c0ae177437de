package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/locallibrary/catalog/internal/api"
	"github.com/locallibrary/catalog/internal/api/view"
	"github.com/locallibrary/catalog/internal/config"
	"github.com/locallibrary/catalog/internal/logger"
	"github.com/locallibrary/catalog/internal/ratelimit"
	"github.com/locallibrary/catalog/internal/service"
)

// ProvideViews provides the page renderer. Templates are read from disk and
// reloaded on change when a templates directory is configured. The renderer
// implements do.Shutdownable itself.
func ProvideViews(i do.Injector) (*view.Renderer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	renderer, err := view.New(view.Options{
		Dir:    cfg.Views.TemplatesDir,
		Logger: log.Logger,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Views.TemplatesDir != "" {
		log.Info("Watching templates", "dir", cfg.Views.TemplatesDir)
	}

	return renderer, nil
}

// WriteLimiterHandle wraps the form submission limiter with Shutdownable.
type WriteLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *WriteLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideWriteLimiter provides the per-client limiter for form submissions.
func ProvideWriteLimiter(i do.Injector) (*WriteLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.PerInterval(cfg.RateLimit.WritesPerMinute, time.Minute, cfg.RateLimit.Burst)
	return &WriteLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	views := do.MustInvoke[*view.Renderer](i)
	limiter := do.MustInvoke[*WriteLimiterHandle](i)

	services := &api.Services{
		Catalog:      do.MustInvoke[*service.CatalogService](i),
		Author:       do.MustInvoke[*service.AuthorService](i),
		Book:         do.MustInvoke[*service.BookService](i),
		Genre:        do.MustInvoke[*service.GenreService](i),
		BookInstance: do.MustInvoke[*service.BookInstanceService](i),
		Search:       do.MustInvoke[*service.SearchService](i),
	}

	handler := api.NewServer(services, views, log.Logger, api.Options{
		Development:  cfg.App.IsDevelopment(),
		WriteLimiter: limiter.KeyedRateLimiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
