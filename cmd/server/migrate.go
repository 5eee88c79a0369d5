package main

import (
	"go-gin-pd-registration/config"
	"go-gin-pd-registration/internal/database"
	"go-gin-pd-registration/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		logger.SetLevel(cfg.Log.Level)
		defer logger.Sync()

		if err := database.Migrate(&cfg.Database); err != nil {
			return err
		}
		logger.WithComponent("database").Info("migrations applied")
		return nil
	},
}
