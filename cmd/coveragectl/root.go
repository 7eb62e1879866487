package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"pricehistory_backend/internal/platform/config"
	platformdb "pricehistory_backend/internal/platform/db"
	"pricehistory_backend/internal/platform/logger"
)

var (
	configFile string
	cfg        *config.Config
	db         *gorm.DB
)

var rootCMD = &cobra.Command{
	Use:   "coveragectl",
	Short: "Inspect price history coverage from the command line",
	Long: `coveragectl reads the same database as the API server.
It exports the coverage table as CSV and resolves symbol-change segments
for a ticker without going through HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(".env")

		var err error
		cfg, err = config.LoadConfig("config/config.toml", configFile)
		if err != nil {
			return err
		}
		// 標準出力はCSV用に空けておく
		logger.New(cfg.Logging.Level, "text")

		db, err = platformdb.Open(cfg.Database)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db == nil {
			return
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	},
}

func Execute() {
	err := rootCMD.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCMD.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"), "path to an extra TOML config file")
	rootCMD.AddCommand(exportCMD, resolveCMD)
}
