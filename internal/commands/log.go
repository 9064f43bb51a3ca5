package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tickmark-dev/tickmark/internal/auditlog"
)

func newLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the engagement audit trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}

			entries, err := auditlog.Read(eng.Root)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No audit log entries")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %-18s %-12s %s  %s\n",
					e.Timestamp.Format(time.RFC3339), e.Action, e.User, e.EntityID, e.Details)
			}
			return nil
		},
	}
}
