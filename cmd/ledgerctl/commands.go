package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/congo-pay/payroll_escrow/internal/balance"
	"github.com/congo-pay/payroll_escrow/internal/infra"
	"github.com/congo-pay/payroll_escrow/internal/ledger"
)

var (
	databaseURL string
	timeout     time.Duration
	bcryptCost  int
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "ledgerctl administers the payroll escrow ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&databaseURL, "database-url", "d", os.Getenv("DATABASE_URL"), "postgres connection string")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "deadline for database work")

	root.AddCommand(newMigrateCmd(), newBalanceCmd(), newHashKeyCmd(), newSumCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create the escrow schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := infra.Migrate(ctx, pool); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-code>",
		Short: "print an account balance as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
				funds, err := ledger.NewPostgresLedger(pool).Balance(ctx, args[0])
				if err != nil {
					return fmt.Errorf("balance of %s: %w", args[0], err)
				}
				return printJSON(cmd, funds)
			})
		},
	}
}

func newHashKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-key <operator-key>",
		Short: "print the OPERATOR_KEY_HASH value for an operator key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcryptCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().IntVar(&bcryptCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

// newSumCmd folds balances read as JSON arguments with checked addition.
// Operators use it to reconcile payroll batches offline.
func newSumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sum <balance-json>...",
		Short: "add wrapped balances of one variant and print the total",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var total balance.WrappedBalance
			for i, arg := range args {
				var funds balance.WrappedBalance
				if err := json.Unmarshal([]byte(arg), &funds); err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
				if i == 0 {
					total = funds
					continue
				}
				if err := total.CheckedAdd(funds); err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
			}
			return printJSON(cmd, total)
		},
	}
}

func withPool(parent context.Context, fn func(context.Context, *pgxpool.Pool) error) error {
	if databaseURL == "" {
		return fmt.Errorf("database url is required (--database-url or DATABASE_URL)")
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	pool, err := infra.NewPostgresPool(ctx, databaseURL, 2)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, pool)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
