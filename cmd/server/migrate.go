package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/CompanyPortal/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := openPool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()
		return database.Migrate(cmd.Context(), pool)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
