// Package cmd 后台服务的命令行入口：serve、migrate、seed、reply-worker。
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/infra/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "commerceops-admin",
	Short: "Commerce operations admin backend",
	Long: `Admin backend for the shop: catalog and stock, order and payment
status, contact message triage and the dashboard metrics.

Configuration is read from an optional YAML file and COMMERCEOPS_* environment
variables, e.g. COMMERCEOPS_STORAGE_DRIVER=memory.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (yaml)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap 加载配置并初始化日志
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.Init(&cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
