package main

import (
	"fmt"
	"os"

	"crabbox/internal/config"
	"crabbox/internal/infra/db"
	"crabbox/internal/infra/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	cfg config.Config
	log *zap.Logger
)

// rootCmd 根コマンド
var rootCmd = &cobra.Command{
	Use:   "crabbox",
	Short: "カニのギフトボックス販売の台帳サービス",
	Long: `crabbox - ギフトボックスの販売・預かり・返金を管理するAPIサーバー

  crabbox serve           # APIサーバーを起動
  crabbox migrate         # テーブル作成と初期データ
  crabbox token mint      # テスト用トークンを発行
  crabbox token balance   # 残高を表示`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.Log)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// DB接続（migrate以外でもテーブルが無ければ作る）
func openDB() (*gorm.DB, error) {
	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gormDB, nil
}
