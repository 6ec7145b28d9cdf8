package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obentoo/ebuildkit/pkg/atom"
	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/version"
)

var parseEAPI string

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse and print versions or atoms",
}

var parseVersionCmd = &cobra.Command{
	Use:   "version [versions...]",
	Short: "Parse one or more version strings and print their canonical form",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range args {
			v, err := version.Parse(s)
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", s, v.Render())
		}
		return nil
	},
}

var parseCompareCmd = &cobra.Command{
	Use:   "compare <v1> <v2>",
	Short: "Compare two versions per PMS ordering rules",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := version.Parse(args[0])
		if err != nil {
			return err
		}
		b, err := version.Parse(args[1])
		if err != nil {
			return err
		}
		switch c := version.Cmp(a, b); {
		case c < 0:
			fmt.Printf("%s < %s\n", args[0], args[1])
		case c > 0:
			fmt.Printf("%s > %s\n", args[0], args[1])
		default:
			fmt.Printf("%s == %s\n", args[0], args[1])
		}
		return nil
	},
}

var parseAtomCmd = &cobra.Command{
	Use:   "atom <atom> [atoms...]",
	Short: "Parse one or more atom strings under the given EAPI",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := parseEAPI
		if id == "" && cfg != nil {
			id = cfg.DefaultEAPI
		}
		e, err := eapi.Get(id)
		if err != nil {
			return err
		}
		for _, s := range args {
			a, err := atom.Parse(s, e)
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s (category=%s package=%s)\n", s, a.Render(), a.Category, a.Package)
		}
		return nil
	},
}

func init() {
	parseAtomCmd.Flags().StringVar(&parseEAPI, "eapi", "", "EAPI to parse the atom under (defaults to ebuildkit.toml's default_eapi, else \"8\")")
	parseCmd.AddCommand(parseVersionCmd)
	parseCmd.AddCommand(parseCompareCmd)
	parseCmd.AddCommand(parseAtomCmd)
}
