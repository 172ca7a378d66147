package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/devbackend"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var devBackendCmd = &cobra.Command{
	Use:   "devbackend",
	Short: "Run a local stand-in for the restaurant REST backend",
	Long: `devbackend serves the backend REST contract from a sqlite (or mysql)
database, seeded with an admin account, a small catalog and two blocks of
tables. It is meant for development and tests, not production.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Server.GinMode == gin.ReleaseMode {
			gin.SetMode(gin.ReleaseMode)
		}

		db, err := database.Connect(cfg.DevBackend.DBDriver, cfg.DevBackend.DSN)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		err = database.Seed(db, database.SeedOptions{
			AdminEmail:    cfg.DevBackend.SeedEmail,
			AdminPassword: cfg.DevBackend.SeedPassword,
		})
		if err != nil {
			return err
		}

		srv := devbackend.NewServer(db, cfg.DevJWTSecret(), cfg.DevBackend.TokenLifetime)

		utils.InfoLogger.Printf("Stand-in backend listening on port %s (%s)", cfg.DevBackend.Port, cfg.DevBackend.DBDriver)
		return serve(ctx, ":"+cfg.DevBackend.Port, srv.Router())
	},
}
