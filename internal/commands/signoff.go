package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tickmark-dev/tickmark/internal/model"
)

func newSignOffCommand() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "signoff <schedule-number>",
		Short: "Sign off a lead schedule as preparer or reviewer",
		Long: `Signoff records the calling user's signature on a schedule. Preparer
sign-off comes first; reviewer sign-off requires a recorded preparer and
locks the schedule against further balance or membership changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}

			sched, err := eng.SignOff(args[0], model.SignOffRole(strings.ToLower(role)), userFlag(cmd))
			if err != nil {
				return err
			}

			fmt.Printf("Schedule %s is now %s\n", sched.ScheduleNumber, sched.State())
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(model.RolePreparer), "sign-off role: preparer or reviewer")

	return cmd
}
