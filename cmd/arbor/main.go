package main

import (
	"fmt"
	"os"

	"github.com/go-arbor/arbor/internal/bootstrap"
	"github.com/go-arbor/arbor/pkg/version"
	"github.com/spf13/cobra"
)

var confDir string

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Hierarchical navigation-menu engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		shutdown, err := bootstrap.Bootstrap(confDir)
		if err != nil {
			return err
		}
		// blocks until a termination signal arrives
		shutdown()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&confDir, "conf", "conf.d", "configuration directory, e.g. --conf ./conf.d")
	rootCmd.AddCommand(version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
