// Package cli provides command definitions for cpm.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/cpm/internal/config"
	"github.com/klauern/cpm/internal/detector"
	"github.com/klauern/cpm/internal/installer"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/ui"
)

// platformFlag is shared by the commands that target platforms.
func platformFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Target platform (claude-code, cursor, codex); repeatable",
	}
}

func projectFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "project",
		Usage: "Project directory (defaults to the working directory)",
	}
}

// setup loads configuration and resolves the target platforms and
// project directory from flags.
func setup(cmd *cli.Command) (*config.Config, []model.Platform, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, "", fmt.Errorf("loading configuration: %w", err)
	}

	platforms := cfg.Platforms()
	if raw := cmd.StringSlice("platform"); len(raw) > 0 {
		platforms = platforms[:0]
		for _, name := range raw {
			p, err := model.ParsePlatform(name)
			if err != nil {
				return nil, nil, "", err
			}
			platforms = append(platforms, p)
		}
	}

	project := cmd.String("project")
	if project == "" {
		project, err = os.Getwd()
		if err != nil {
			return nil, nil, "", fmt.Errorf("determining working directory: %w", err)
		}
	}

	// No flag and nothing usable in config: fall back to whatever
	// platforms the project itself shows signs of.
	if len(platforms) == 0 {
		platforms = detector.Platforms(project)
	}
	if len(platforms) == 0 {
		platforms = []model.Platform{model.ClaudeCode}
	}

	return cfg, platforms, project, nil
}

func installCommand() *cli.Command {
	return &cli.Command{
		Name:      "install",
		Aliases:   []string{"i", "add"},
		Usage:     "Install one or more packages",
		UsageText: "cpm install [options] <package>...",
		Description: `Resolve each package through the source chain (repository,
   tarball, bundled fallback, registry) and install it for every
   target platform.

   Examples:
     cpm install nextjs-rules
     cpm install --platform cursor @cpm/typescript-rules
     cpm install -p claude-code -p codex nextjs-rules github-tools`,
		Flags: []cli.Flag{platformFlag(), projectFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() == 0 {
				return errors.New("install requires at least one package name")
			}

			cfg, platforms, project, err := setup(cmd)
			if err != nil {
				return err
			}
			inst := installer.New(cfg)

			var failed bool
			for _, name := range args.Slice() {
				outcome, err := inst.Install(ctx, name, project, platforms)
				if err != nil {
					fmt.Println(ui.StatusError(fmt.Sprintf("%s: %v", name, err)))
					failed = true
					continue
				}
				printInstallOutcome(outcome)
				if outcome.Failed() {
					failed = true
				}
			}
			if failed {
				return errors.New("one or more packages failed to install")
			}
			return nil
		},
	}
}

func printInstallOutcome(outcome *installer.InstallOutcome) {
	header := fmt.Sprintf("%s %s (%s, via %s)",
		ui.Bold(outcome.Package), outcome.Version, outcome.Type, outcome.Source)
	fmt.Println(header)

	for _, r := range outcome.Results {
		switch {
		case r.Success && len(r.FilesWritten) > 0:
			fmt.Println("  " + ui.StatusSuccess(fmt.Sprintf("%s: %d file(s)", r.Platform, len(r.FilesWritten))))
		case r.Success:
			fmt.Println("  " + ui.StatusSkipped(fmt.Sprintf("%s: nothing to install", r.Platform)))
		default:
			fmt.Println("  " + ui.StatusError(fmt.Sprintf("%s: %v", r.Platform, r.Err)))
		}
	}
}

func uninstallCommand() *cli.Command {
	return &cli.Command{
		Name:      "uninstall",
		Aliases:   []string{"rm", "remove"},
		Usage:     "Remove one or more installed packages",
		UsageText: "cpm uninstall [options] <package>...",
		Flags:     []cli.Flag{platformFlag(), projectFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() == 0 {
				return errors.New("uninstall requires at least one package name")
			}

			cfg, platforms, project, err := setup(cmd)
			if err != nil {
				return err
			}
			inst := installer.New(cfg)

			var failed bool
			for _, name := range args.Slice() {
				outcomes := inst.Uninstall(name, project, platforms)
				for _, o := range outcomes {
					switch {
					case o.Err != nil:
						fmt.Println(ui.StatusError(fmt.Sprintf("%s (%s): %v", name, o.Platform, o.Err)))
						failed = true
					case len(o.Removed) == 0:
						fmt.Println(ui.StatusSkipped(fmt.Sprintf("%s (%s): not installed", name, o.Platform)))
					default:
						fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s (%s): removed", name, o.Platform)))
					}
				}
			}
			if failed {
				return errors.New("one or more packages failed to uninstall")
			}
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List installed packages",
		Flags:   []cli.Flag{platformFlag(), projectFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, platforms, project, err := setup(cmd)
			if err != nil {
				return err
			}
			inst := installer.New(cfg)

			packages, err := inst.List(project, platforms)
			if err != nil {
				return err
			}
			if len(packages) == 0 {
				fmt.Println("No packages installed.")
				return nil
			}

			printInstalledTable(packages)
			return nil
		},
	}
}

func printInstalledTable(packages []model.InstalledPackage) {
	nameWidth := 28
	if extra := ui.TerminalWidth(100) - 100; extra > 0 {
		nameWidth += extra
	}

	fmt.Printf("%s  %s  %s  %s\n",
		ui.Header(pad("NAME", nameWidth)),
		ui.Header(pad("TYPE", 8)),
		ui.Header(pad("VERSION", 10)),
		ui.Header("PLATFORM"))
	for _, p := range packages {
		version := p.Version
		if version == "" {
			version = "-"
		}
		fmt.Printf("%s  %s  %s  %s\n",
			pad(truncate(p.Name, nameWidth), nameWidth),
			pad(string(p.Type), 8),
			pad(version, 10),
			p.Platform)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display current configuration",
		Action: func(_ context.Context, _ *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			fmt.Println(ui.Bold("Registry"))
			fmt.Printf("  base_url: %s\n", cfg.Registry.BaseURL)
			fmt.Printf("  timeout:  %s\n", cfg.Registry.Timeout)
			fmt.Println(ui.Bold("Install"))
			fmt.Printf("  default_platforms: %v\n", cfg.Install.DefaultPlatforms)
			fmt.Printf("  scan_content:      %v\n", cfg.Install.ScanContent)
			fmt.Println(ui.Bold("Sources"))
			fmt.Printf("  manifest_timeout: %s\n", cfg.Sources.ManifestTimeout)
			fmt.Printf("  download_timeout: %s\n", cfg.Sources.DownloadTimeout)
			fmt.Println(ui.Bold("Paths"))
			fmt.Println("  Claude Code: .claude/rules/, .claude/commands/, .mcp.json")
			fmt.Println("  Cursor:      .cursor/rules/, .cursor/mcp.json")
			fmt.Println("  Codex:       .codex/rules/")
			return nil
		},
	}
}
