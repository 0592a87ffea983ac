package cmd

import (
	"github.com/spf13/cobra"

	"github.com/heshamdawsha976/sen2/internal/db"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply the SQL migrations in MIGRATIONS_PATH to the configured database.

Without --steps every pending migration is applied. A positive value
applies that many, a negative value rolls back that many.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return db.Migrate(cfg.Postgres, migrateSteps)
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of migrations to apply (negative rolls back)")
	rootCmd.AddCommand(migrateCmd)
}
