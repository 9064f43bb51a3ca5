package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tickmark-dev/tickmark/internal/buildinfo"
	"github.com/tickmark-dev/tickmark/internal/engagement"
	"github.com/tickmark-dev/tickmark/internal/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tickmark",
		Short:   "Trial-balance import and lead-schedule workpapers",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().String("dir", ".", "engagement workspace directory")
	rootCmd.PersistentFlags().String("user", defaultUser(), "user recorded in the audit trail")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newAdjustCommand())
	rootCmd.AddCommand(newScheduleCommand())
	rootCmd.AddCommand(newSignOffCommand())
	rootCmd.AddCommand(newLockCommand())
	rootCmd.AddCommand(newUnlockCommand())
	rootCmd.AddCommand(newRollbackCommand())
	rootCmd.AddCommand(newLogCommand())

	return rootCmd
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

// openEngagement resolves the workspace flag and wires the services.
func openEngagement(cmd *cobra.Command) (*engagement.Engagement, error) {
	dir, _ := cmd.Flags().GetString("dir")
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := logging.New(verbose)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return engagement.Open(absDir, logger)
}

func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}
