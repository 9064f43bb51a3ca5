package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tickmark-dev/tickmark/internal/model"
	"github.com/tickmark-dev/tickmark/internal/schedule"
)

func newScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage lead schedules",
	}

	cmd.AddCommand(newScheduleCreateCommand())
	cmd.AddCommand(newScheduleAutoCommand())
	cmd.AddCommand(newScheduleLinkCommand())
	cmd.AddCommand(newScheduleUnlinkCommand())
	cmd.AddCommand(newScheduleListCommand())

	return cmd
}

func newScheduleCreateCommand() *cobra.Command {
	var (
		number   string
		name     string
		area     string
		riskStr  string
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lead schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}

			sched, err := eng.CreateSchedule(schedule.CreateParams{
				ScheduleNumber:  number,
				ScheduleName:    name,
				Area:            model.Area(strings.ToLower(area)),
				RiskLevel:       model.RiskLevel(strings.ToLower(riskStr)),
				TestingStrategy: strategy,
			}, userFlag(cmd))
			if err != nil {
				return err
			}

			fmt.Printf("Created schedule %s %s\n", sched.ScheduleNumber, sched.ScheduleName)
			return nil
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "schedule number, e.g. A-1 (required)")
	_ = cmd.MarkFlagRequired("number")
	cmd.Flags().StringVar(&name, "name", "", "schedule name")
	cmd.Flags().StringVar(&area, "area", string(model.AreaOther), "financial statement area")
	cmd.Flags().StringVar(&riskStr, "risk", string(model.RiskModerate), "risk level: low, moderate, high")
	cmd.Flags().StringVar(&strategy, "strategy", "", "testing strategy note")

	return cmd
}

func newScheduleAutoCommand() *cobra.Command {
	var materiality float64

	cmd := &cobra.Command{
		Use:   "auto <batch-id>",
		Short: "Auto-generate schedules from a batch's unlinked accounts",
		Long: `Auto groups the batch's unlinked accounts by financial-statement area and
account-name stem, creates one candidate schedule per group, links the
members, and flags significant accounts by size and area risk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}

			created, err := eng.AutoGenerateSchedules(args[0], decimal.NewFromFloat(materiality), userFlag(cmd))
			if err != nil {
				return err
			}

			for _, s := range created {
				mark := ""
				if s.SignificantAccount {
					mark = " [significant]"
				}
				fmt.Printf("%-6s %-30s %12s%s\n", s.ScheduleNumber, s.ScheduleName, s.FinalBalance.StringFixed(2), mark)
			}
			fmt.Printf("Generated %d schedules\n", len(created))
			return nil
		},
	}

	cmd.Flags().Float64Var(&materiality, "materiality", 0, "materiality threshold (default from tickmark.yaml)")

	return cmd
}

func newScheduleLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <schedule-number> <account-id>",
		Short: "Link an account to a schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}
			if err := eng.LinkAccount(args[0], args[1], userFlag(cmd)); err != nil {
				return err
			}
			fmt.Printf("Linked account to %s\n", args[0])
			return nil
		},
	}
}

func newScheduleUnlinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <schedule-number> <account-id>",
		Short: "Unlink an account from a schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}
			if err := eng.UnlinkAccount(args[0], args[1], userFlag(cmd)); err != nil {
				return err
			}
			fmt.Printf("Unlinked account from %s\n", args[0])
			return nil
		},
	}
}

func newScheduleListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lead schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}

			schedules, err := eng.Schedules.Schedules()
			if err != nil {
				return err
			}
			if len(schedules) == 0 {
				fmt.Println("No schedules")
				return nil
			}

			threshold := eng.Config.Materiality.ThresholdDecimal()
			fmt.Printf("%-6s %-30s %12s %-16s %s\n", "NUM", "NAME", "FINAL", "STATE", "FLAGS")
			for _, s := range schedules {
				var flags []string
				if s.SignificantAccount {
					flags = append(flags, "significant")
				}
				if !threshold.IsZero() && s.IsMaterial(threshold) {
					flags = append(flags, "material")
				}
				fmt.Printf("%-6s %-30s %12s %-16s %s\n",
					s.ScheduleNumber, s.ScheduleName, s.FinalBalance.StringFixed(2),
					s.State(), strings.Join(flags, ","))
			}
			return nil
		},
	}
}
