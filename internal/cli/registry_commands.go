package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/cpm/internal/config"
	"github.com/klauern/cpm/internal/installer"
	"github.com/klauern/cpm/internal/registry"
	"github.com/klauern/cpm/internal/ui"
	"github.com/klauern/cpm/internal/ui/tui"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the package registry",
		UsageText: "cpm search <query>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("search requires a query")
			}
			query := strings.Join(cmd.Args().Slice(), " ")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client := registry.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout)

			results, err := client.Search(ctx, query)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Printf("No packages found for %q.\n", query)
				return nil
			}

			printSearchTable(results)
			return nil
		},
	}
}

func printSearchTable(results []registry.SearchResult) {
	width := ui.TerminalWidth(100)
	nameWidth := 28
	descWidth := width - nameWidth - 24
	if descWidth < 10 {
		descWidth = 10
	}

	fmt.Printf("%s  %s  %s  %s\n",
		ui.Header(pad("NAME", nameWidth)),
		ui.Header(pad("TYPE", 8)),
		ui.Header(pad("VERSION", 10)),
		ui.Header("DESCRIPTION"))
	for _, r := range results {
		pkgType := r.Type
		if pkgType == "" {
			pkgType = "-"
		}
		version := r.Version
		if version == "" {
			version = "-"
		}
		fmt.Printf("%s  %s  %s  %s\n",
			pad(truncate(r.Name, nameWidth), nameWidth),
			pad(pkgType, 8),
			pad(version, 10),
			truncate(r.Description, descWidth))
	}
	fmt.Printf("\n%d package(s) found.\n", len(results))
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Aliases:   []string{"show"},
		Usage:     "Show registry details for a package",
		UsageText: "cpm info <package>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("info requires exactly one package name")
			}
			name := cmd.Args().First()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client := registry.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout)

			ref, err := client.GetPackage(ctx, name)
			if err != nil {
				return err
			}
			if ref == nil {
				return fmt.Errorf("package %q not found in registry", name)
			}

			fmt.Println(ui.Bold(ref.Name))
			if ref.Description != "" {
				fmt.Printf("  %s\n", ref.Description)
			}
			if ref.Version != "" {
				fmt.Printf("  Version:    %s\n", ref.Version)
			}
			if ref.Type != "" {
				fmt.Printf("  Type:       %s\n", ref.Type)
			}
			if ref.Repository != "" {
				fmt.Printf("  Repository: %s\n", ref.Repository)
			}
			if ref.Tarball != "" {
				fmt.Printf("  Tarball:    %s\n", ref.Tarball)
			}
			if len(ref.Keywords) > 0 {
				fmt.Printf("  Keywords:   %s\n", strings.Join(ref.Keywords, ", "))
			}
			return nil
		},
	}
}

func browseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse registry packages interactively",
		Description: `Open an interactive package browser. Selecting a package with
   enter installs it for the configured platforms.`,
		Flags: []cli.Flag{platformFlag(), projectFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, platforms, project, err := setup(cmd)
			if err != nil {
				return err
			}
			client := registry.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout)

			results, err := client.Search(ctx, "")
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("The registry returned no packages to browse.")
				return nil
			}

			selection, err := tui.RunBrowseList(results)
			if err != nil {
				return err
			}
			if selection.Action != tui.BrowseActionInstall {
				return nil
			}

			inst := installer.New(cfg)
			outcome, err := inst.Install(ctx, selection.Package.Name, project, platforms)
			if err != nil {
				return err
			}
			printInstallOutcome(outcome)
			if outcome.Failed() {
				return fmt.Errorf("install of %s failed on one or more platforms", selection.Package.Name)
			}
			return nil
		},
	}
}
