package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corpusgap/corpusgap/configs"
	"github.com/corpusgap/corpusgap/internal/config"
	"github.com/corpusgap/corpusgap/internal/output"
)

const (
	projectConfigName    = ".corpusgap.yaml"
	exampleQuestionsName = "questions.yaml"
)

func newInitCmd() *cobra.Command {
	var (
		force bool
		user  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write starter configuration files",
		Long: `Init writes a commented .corpusgap.yaml and an example questions.yaml
to the current directory.

With --user it instead writes the machine-level config to the XDG user
config path, backing up any existing file first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user {
				return runInitUser(cmd, force)
			}
			return runInitProject(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user-level config instead of project files")

	return cmd
}

func runInitProject(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	if _, err := os.Stat(projectConfigName); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", projectConfigName)
	}
	if err := os.WriteFile(projectConfigName, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", projectConfigName, err)
	}
	out.Successf("Wrote %s", projectConfigName)

	if _, err := os.Stat(exampleQuestionsName); err == nil && !force {
		out.Statusf("", "%s already exists, leaving it alone", exampleQuestionsName)
	} else {
		if err := os.WriteFile(exampleQuestionsName, []byte(configs.QuestionsTemplate), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exampleQuestionsName, err)
		}
		out.Successf("Wrote example %s", exampleQuestionsName)
	}

	out.Newline()
	out.Status("", "next: corpusgap ingest <docs>, then corpusgap evaluate questions.yaml")
	return nil
}

func runInitUser(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	path := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			backup, err := config.BackupUserConfig()
			if err != nil {
				return err
			}
			out.Statusf("💾", "Existing config backed up to %s", backup)
		}
	} else if err := os.MkdirAll(config.GetUserConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	out.Successf("Wrote user config to %s", path)
	return nil
}
