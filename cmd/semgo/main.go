// Command semgo runs pattern-based rule analysis over source files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; most environments configure semgo purely through
	// flags, so a missing file is not an error.
	_ = godotenv.Load()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "semgo",
		Short:         "semgo matches declarative rules against source code",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newScanCmd())
	return cmd
}
