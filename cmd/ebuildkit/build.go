package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/obentoo/ebuildkit/internal/commands"
	"github.com/obentoo/ebuildkit/pkg/buildstate"
	"github.com/obentoo/ebuildkit/pkg/ebuild"
	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/phase"
	"github.com/obentoo/ebuildkit/pkg/shell"
	"github.com/obentoo/ebuildkit/pkg/version"
)

var (
	buildCategory string
	buildPackage  string
	buildVersion  string
)

var buildCmd = &cobra.Command{
	Use:   "build <ebuild-file>",
	Short: "Source an ebuild and run its phases end to end",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildCategory, "category", "app-misc", "package category")
	buildCmd.Flags().StringVar(&buildPackage, "package", "", "package name (defaults to the ebuild's base name)")
	buildCmd.Flags().StringVar(&buildVersion, "version", "1.0", "package version")
}

func runBuild(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	eapiID := ebuild.SniffEAPI(string(data))
	e, err := eapi.Get(eapiID)
	if err != nil {
		return fmt.Errorf("unsupported EAPI %q declared in %s: %w", eapiID, path, err)
	}

	pkgName := buildPackage
	if pkgName == "" {
		pkgName = filepath.Base(path)
	}
	v, err := version.Parse(buildVersion)
	if err != nil {
		return err
	}

	bs := buildstate.New(e, buildstate.PackageIdentity{
		Category: buildCategory,
		Package:  pkgName,
		Version:  v,
	}, nil, os.Stdout, os.Stderr)

	rt, err := shell.New(bs, commands.Table())
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := rt.Source(ctx, path, string(data)); err != nil {
		return err
	}

	meta, err := ebuild.FromRaw(ebuild.RawMetadata{EAPI: e, Vars: bs.Vars})
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", color.GreenString("ok"), meta.Description)

	driver := &phase.Driver{EAPI: e, Runtime: rt, Funcs: rt}
	if err := driver.Run(ctx); err != nil {
		return err
	}

	for _, action := range bs.Installed {
		fmt.Printf("  %s %v -> %s (%s)\n", action.Command, action.Sources, action.Dest, action.Mode)
	}
	return nil
}
