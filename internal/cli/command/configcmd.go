// Package command provides CLI command definitions for authgate-cli.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kehilahub/authgate/internal/cli/config"
	"github.com/kehilahub/authgate/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:   "init",
				Usage:  "Write a config file with the defaults",
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}
	if flags.Platform != "" {
		cfg.PlatformURL = flags.Platform
	}

	format := output.Format(cfg.DefaultOutput)
	if flags.Output != "" {
		format = output.Format(flags.Output)
	}

	switch format {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(format)
		return formatter.Format(os.Stdout, cfg)
	default:
		table := &output.Table{Headers: []string{"SETTING", "VALUE"}}
		table.AddRow("platform_url", cfg.PlatformURL)
		table.AddRow("ca_file", cfg.CAFile)
		table.AddRow("vault_dir", cfg.VaultDir)
		table.AddRow("key_file", cfg.KeyFile)
		table.AddRow("default_output", cfg.DefaultOutput)
		table.AddRow("fallback_tenants", fmt.Sprintf("%v", cfg.FallbackTenants))
		return table.Render(os.Stdout)
	}
}

func configPath(c *cli.Context) error {
	path := ParseGlobalFlags(c).ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fmt.Println(path)
	return nil
}

func configInit(c *cli.Context) error {
	path := ParseGlobalFlags(c).ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
