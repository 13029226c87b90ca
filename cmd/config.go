package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mahendrapaipuri/gitlab-activity/config"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, path)
		},
	}

	cmd.PersistentFlags().StringVarP(&path, "config", "c", "", "Path to a configuration file")

	cmd.AddCommand(newCmdConfigInit())
	cmd.AddCommand(newCmdConfigShow(&path))

	return cmd
}

func newCmdConfigInit() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a starter .gitlab-activity.toml in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			const name = ".gitlab-activity.toml"
			if _, err := os.Stat(name); err == nil {
				return fmt.Errorf("%s already exists", name)
			}
			if err := os.WriteFile(name, []byte(config.MinimalConfig()), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", name)
			return nil
		},
	}
}

func newCmdConfigShow(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, *path)
		},
	}
}

func runConfigShow(cmd *cobra.Command, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	// show the configuration with all defaults applied
	cfg.Activity.BotUsers = cfg.GetBotUsers()
	cfg.Activity.Categories = cfg.GetCategories()

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
