package db

import (
	"errors"
	"fmt"

	"crabbox/internal/config"
	"crabbox/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.DB) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	case "postgres", "":
		return gorm.Open(postgres.Open(postgresDSN(cfg)), gormConfig())
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.Driver)
	}
}

// SQLiteは行ロックが無いので接続を1本にして直列化する。
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// 一意制約違反を gorm.ErrDuplicatedKey に変換
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

func postgresDSN(cfg config.DB) string {
	// DATABASE_URL があれば最優先で使う
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
}

// Migrate はテーブルを作り、残高行と注文番号の初期値を入れる。何度呼んでもよい。
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}
	if err := db.AutoMigrate(
		&model.GiftBox{},
		&model.InventoryAdjustment{},
		&model.Order{},
		&model.Ledger{},
		&model.LedgerEntry{},
		&model.TokenAccount{},
		&model.TokenAllowance{},
		&model.Sequence{},
		&model.Account{},
		&model.LoginNonce{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Ledger{ID: model.LedgerRowID, Balance: 0}).Error; err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Sequence{Name: model.SequenceOrders, NextValue: 1}).Error; err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}
