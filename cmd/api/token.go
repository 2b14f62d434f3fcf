package main

import (
	"encoding/json"
	"fmt"
	"os"

	"crabbox/internal/domain/money"
	infrarepo "crabbox/internal/infra/repository"
	"crabbox/internal/usecase"

	"github.com/spf13/cobra"
)

// tokenCmd 支払いトークンの操作（テストネット用）
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "支払いトークンの残高確認と発行",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint <to> <amount>",
	Short: "オーナーとしてトークンを発行（TOKEN_FAUCET_ENABLED=true のときだけ）",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := money.ParseAmount(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		uc, err := newTokenUsecase()
		if err != nil {
			return err
		}
		out, err := uc.Mint(cmd.Context(), usecase.Caller{Address: cfg.Chain.OwnerAddress}, args[0], amount)
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "残高を表示",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := newTokenUsecase()
		if err != nil {
			return err
		}
		out, err := uc.BalanceOf(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

func init() {
	tokenCmd.AddCommand(tokenMintCmd, tokenBalanceCmd)
}

func newTokenUsecase() (*usecase.TokenUsecase, error) {
	gormDB, err := openDB()
	if err != nil {
		return nil, err
	}
	access := usecase.NewAccessControl(cfg.Chain.OwnerAddress)
	return usecase.NewTokenUsecase(infrarepo.NewTxManagerGorm(gormDB), access, cfg.Chain.TokenFaucetEnabled, log), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
