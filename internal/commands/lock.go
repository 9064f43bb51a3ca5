package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lock <batch-id>",
		Short: "Lock a trial balance batch against changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}
			if err := eng.SetBatchLock(args[0], true, userFlag(cmd)); err != nil {
				return err
			}
			fmt.Printf("Locked batch %s\n", args[0])
			return nil
		},
	}
}

func newUnlockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <batch-id>",
		Short: "Unlock a trial balance batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}
			if err := eng.SetBatchLock(args[0], false, userFlag(cmd)); err != nil {
				return err
			}
			fmt.Printf("Unlocked batch %s\n", args[0])
			return nil
		},
	}
}

func newRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <batch-id>",
		Short: "Remove an imported batch and all its accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}
			if err := eng.RollbackBatch(args[0], userFlag(cmd)); err != nil {
				return err
			}
			fmt.Printf("Rolled back batch %s\n", args[0])
			return nil
		},
	}
}
