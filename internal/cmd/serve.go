package cmd

import (
	"context"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/seed"
	"github.com/example/commerceops/internal/server"
)

var serveSeed bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "load demo data before serving (useful with storage.driver=memory)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	rt, err := buildRuntime(cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	deps := server.NewDeps(cfg, log, rt.stores, rt.notifier, rt.cache)
	if serveSeed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		sum, err := seed.Demo(ctx, deps.Products, deps.Orders, deps.Messages, rt.stores.Reviews, time.Now())
		cancel()
		if err != nil {
			return err
		}
		log.Info("demo data loaded", zap.Stringer("summary", sum))
	}

	app := server.NewApp(deps)
	addr := cfg.AdminServer.Addr()
	log.Info("admin server listening", zap.String("addr", addr), zap.String("storage", cfg.Storage.Driver))
	return app.Run(iris.Addr(addr), iris.WithoutServerError(iris.ErrServerClosed))
}
