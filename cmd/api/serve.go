package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crabbox/internal/infra/nonce"
	"crabbox/internal/repository"
	"crabbox/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "APIサーバーを起動",
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := openDB()
		if err != nil {
			return err
		}

		//REDIS_ADDRがあればnonceはRedis、無ければDB
		var nonces repository.NonceStore
		if cfg.Redis.Addr != "" {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			client, err := nonce.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			cancel()
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			defer client.Close()
			nonces = nonce.NewRedisStore(client)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		srv := server.NewServer(server.Deps{
			Config:   cfg,
			DB:       gormDB,
			Nonces:   nonces,
			Logger:   log,
			Registry: reg,
		})

		addr := cfg.Port
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}

		log.Info("starting http server",
			zap.String("addr", addr),
			zap.String("env", cfg.GoEnv),
			zap.String("owner", cfg.Chain.OwnerAddress),
			zap.Bool("redis_nonces", nonces != nil),
		)
		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		case sig := <-sigChan:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "graceful shutdownの待ち時間")
}
