package main

import (
	"github.com/spf13/cobra"

	"mesa-vesting/internal/db"
)

var migrateDown bool

// migrateCmd applies the embedded schema migrations to PSQL_ADDRESS.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := cfg.Psql.Addr.String()
		if migrateDown {
			if err := db.MigrateDown(addr); err != nil {
				return err
			}
			logger.Info("migrations reverted")
			return nil
		}
		if err := db.Migrate(addr); err != nil {
			return err
		}
		logger.Info("migrations applied successfully")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "revert all migrations instead")
}
