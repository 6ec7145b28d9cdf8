// Command ebuildkit is a thin demonstration CLI over the ebuildkit
// library: a cobra.Command tree mirroring the teacher's cmd/bentoo shape
// (rootCmd + subcommands registered from init()), exposing the core's
// parse/compare/build operations for manual inspection. It is
// not itself a deliverable of this module (CLI front-ends are out of
// scope as a library collaborator) — it exists only to give the library
// surface one generated entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	cfg     *Config
)

var rootCmd = &cobra.Command{
	Use:   "ebuildkit",
	Short: "Ebuild package ecosystem core, exposed for inspection",
	Long:  `Parses and evaluates ebuild versions, atoms, dependency trees, and phases.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := LoadConfig(cfgPath)
		if err != nil {
			if !errors.Is(err, ErrConfigNotFound) {
				return err
			}
			loaded = &Config{DefaultEAPI: "8", ColorOutput: true}
		}
		cfg = loaded
		color.NoColor = !cfg.ColorOutput
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "ebuildkit.toml", "path to ebuildkit.toml")
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(buildCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:")+" "+err.Error())
		os.Exit(1)
	}
}
