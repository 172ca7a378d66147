package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/router"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the staff console API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runConsole(ctx)
	},
}

func runConsole(ctx context.Context) error {
	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := services.NewBackendClient(cfg.Backend)
	if err != nil {
		return err
	}

	registry, err := session.DefaultRegistry()
	if err != nil {
		return err
	}
	if cfg.Session.JWTSecret == "" {
		utils.InfoLogger.Warn("JWT_SECRET not set, backend tokens are decoded without verification")
	}
	sessions := session.NewManager(backend, registry, cfg.Session.JWTSecret, cfg.Session.TTL)
	go sessions.RunJanitor(ctx, cfg.Session.SweepInterval)

	liveHub := hub.New()
	defer liveHub.Close()

	orders := services.NewOrderService(backend, services.NewDraftStore(), liveHub)

	monitor := services.NewTableMonitor(backend, liveHub, cfg.Monitor.TableRefreshInterval)
	monitor.Start(ctx)
	defer monitor.Stop()

	r := router.SetupRouter(router.Dependencies{
		Config:   cfg,
		Sessions: sessions,
		Backend:  backend,
		Orders:   orders,
		Hub:      liveHub,
	})

	utils.InfoLogger.Printf("Console listening on port %s, backend %s", cfg.Server.Port, cfg.Backend.BaseURL)
	return serve(ctx, ":"+cfg.Server.Port, r)
}

// serve runs handler until ctx is cancelled, then gives in-flight requests a
// few seconds to finish.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
