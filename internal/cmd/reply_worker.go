package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/commerceops/internal/infra/mq"
	"github.com/example/commerceops/internal/worker"
)

// newReplyWorkerCmd 消费留言回复通知并发送邮件
func newReplyWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reply-worker",
		Short: "Consume reply notifications and send the emails",
		RunE:  runReplyWorker,
	}
}

func init() {
	rootCmd.AddCommand(newReplyWorkerCmd())
}

// newReplyWorkerRootCmd 独立二进制的根命令，--config 与 admin 相同
func newReplyWorkerRootCmd() *cobra.Command {
	c := newReplyWorkerCmd()
	c.SilenceUsage = true
	c.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (yaml)")
	return c
}

// ExecuteReplyWorker 独立部署的 reply-worker 入口
func ExecuteReplyWorker() {
	if err := newReplyWorkerRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runReplyWorker(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.RabbitMQ.URL == "" {
		return errors.New("rabbitmq.url is required for the reply worker")
	}
	conn, err := mq.Dial(&cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to connect rabbitmq: %w", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := worker.NewReplyHandler(worker.NewLogMailer(log), log)
	if err := h.Consume(ctx, conn, cfg.RabbitMQ.ReplyQueue); err != nil {
		return fmt.Errorf("reply worker stopped: %w", err)
	}
	log.Info("reply worker shutting down")
	return nil
}
