package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// main keeps the entrypoint thin. Wiring lives in the serve command; the
// other commands poke at the data file directly for field diagnostics.
func main() {
	root := &cobra.Command{
		Use:   "jeevan",
		Short: "Field agent for offline pension verification",
		Long: "jeevan runs the device-local verification agent: a localhost API\n" +
			"backed by an offline submission queue, an encrypted evidence vault\n" +
			"and a background sync orchestrator.",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newResetCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
