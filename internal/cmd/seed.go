package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/commerceops/internal/seed"
	"github.com/example/commerceops/internal/server"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo products, orders, reviews and messages into MySQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.Storage.Driver != "mysql" {
			return fmt.Errorf("seed writes to mysql; for the memory driver use `serve --seed`")
		}
		rt, err := buildRuntime(cfg, log)
		if err != nil {
			return err
		}
		defer rt.Close()

		deps := server.NewDeps(cfg, log, rt.stores, rt.notifier, rt.cache)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		sum, err := seed.Demo(ctx, deps.Products, deps.Orders, deps.Messages, rt.stores.Reviews, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("demo data inserted: %s\n", sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
