package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/commerceops/internal/repository/mysql"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the MySQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.Storage.Driver != "mysql" {
			return fmt.Errorf("migrate needs storage.driver=mysql, got %q", cfg.Storage.Driver)
		}
		db, err := mysql.Open(&cfg.MySQL)
		if err != nil {
			return err
		}
		if err := mysql.Migrate(db); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
		log.Info("schema migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
