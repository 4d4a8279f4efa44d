// Command tours-api runs the tours booking API and its maintenance tasks.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "tours-api",
		Short:         "Tours booking REST API",
		SilenceUsage:  true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newPromoteCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
