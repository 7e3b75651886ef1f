// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	// Blank-imported so database/sql has a driver registered for each side
	// of a migration run without pkg/connector depending on either one
	// directly.
	_ "github.com/lib/pq"
	_ "github.com/sijms/go-ora/v2"
)

// Version is the orapgsync version.
var Version = "development"

func init() {
	viper.SetEnvPrefix("ORAPGSYNC")
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:          "orapgsync",
	Short:        "Migrate an Oracle schema's objects and code to PostgreSQL",
	SilenceUsage: true,
	Version:      Version,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(verifyCmd())

	return rootCmd.Execute()
}
