package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"auxchat_backend/database"
	"auxchat_backend/internal/app"
	"auxchat_backend/internal/config"
	"auxchat_backend/internal/export"
	"auxchat_backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "auxchat",
	Short: "AuxChat backend: location-aware chat with energy economy",
	Run: func(cmd *cobra.Command, args []string) {
		app.Run()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		app.Run()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.Debug)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("Migrations applied")
		return nil
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a SQL data dump of all tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		db, err := openRaw(cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}

		stats, err := export.Dump(context.Background(), db, w, export.Tables, time.Now())
		if err != nil {
			return err
		}
		for _, table := range export.Tables {
			logger.Info("Table exported", "table", table, "rows", stats[table])
		}
		return nil
	},
}

// openRaw открывает database/sql без GORM; sqlite берется через общий Connect
func openRaw(cfg *config.Config) (*sql.DB, error) {
	if cfg.Database.Driver == "sqlite" {
		gormDB, err := database.Connect("sqlite", cfg.Database.DSN, false)
		if err != nil {
			return nil, err
		}
		return gormDB.DB()
	}
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	return db, db.Ping()
}

func loadConfig() *config.Config {
	config.LoadConfig()
	cfg := config.AppConfig
	// логи в stderr, чтобы не смешивать с дампом в stdout
	logger.InitWithWriter(cfg.Server.Env, os.Stderr)
	return cfg
}

func main() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write dump to file instead of stdout")
	rootCmd.AddCommand(serveCmd, migrateCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
