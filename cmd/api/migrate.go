package main

import (
	"fmt"

	"crabbox/internal/infra/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "テーブル作成と初期データ（台帳・注文番号）",
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := db.Connect(cfg.DB)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrated", zap.String("driver", cfg.DB.Driver))
		return nil
	},
}
