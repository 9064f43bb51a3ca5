package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAdjustCommand() *cobra.Command {
	var reclass bool

	cmd := &cobra.Command{
		Use:   "adjust <account-id> <amount>",
		Short: "Record an audit adjustment against an account",
		Long: `Adjust adds a signed amount to an account's audit adjustments (or, with
--reclass, its reclassifications) and recomputes the final balance and any
linked schedule rollup. Amounts accumulate; posting twice adjusts twice.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}

			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", args[1], err)
			}

			account, err := eng.RecordAdjustment(args[0], amount, reclass, userFlag(cmd))
			if err != nil {
				return err
			}

			kind := "adjustment"
			if reclass {
				kind = "reclassification"
			}
			fmt.Printf("Recorded %s of %s on %s %s (final balance %s)\n",
				kind, amount.StringFixed(2), account.AccountNumber, account.AccountName,
				account.FinalBalance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reclass, "reclass", false, "record as a reclassification instead of an adjustment")

	return cmd
}
