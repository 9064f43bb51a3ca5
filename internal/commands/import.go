package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tickmark-dev/tickmark/internal/engagement"
	"github.com/tickmark-dev/tickmark/internal/importer"
	"github.com/tickmark-dev/tickmark/internal/model"
	"github.com/tickmark-dev/tickmark/internal/parse"
	"github.com/tickmark-dev/tickmark/internal/trialbalance"
)

func newImportCommand() *cobra.Command {
	var (
		dryRun    bool
		force     bool
		source    string
		period    string
		periodEnd string
		sets      []string
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a trial balance export",
		Long: `Import parses a client general-ledger export, maps its columns, classifies
the accounts, validates double-entry balance, and commits the batch. With no
file argument, every export waiting in import/ is processed and moved to
import/processed/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngagement(cmd)
			if err != nil {
				return err
			}

			overrides, err := parseOverrides(sets)
			if err != nil {
				return err
			}

			endDate := time.Now().UTC().Truncate(24 * time.Hour)
			if periodEnd != "" {
				endDate, err = time.Parse("2006-01-02", periodEnd)
				if err != nil {
					return fmt.Errorf("parsing --period-end: %w", err)
				}
			}

			params := engagement.ImportParams{
				SourceSystem:  source,
				Overrides:     overrides,
				PeriodType:    model.PeriodType(period),
				PeriodEndDate: endDate,
				DryRun:        dryRun,
				Force:         force,
				User:          userFlag(cmd),
			}

			if len(args) > 0 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading %s: %w", args[0], err)
				}
				params.Text = string(data)
				return runImport(eng, args[0], params)
			}

			files, err := importer.Scan(eng.Root)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("Nothing to import in import/")
				return nil
			}
			for _, f := range files {
				data, err := os.ReadFile(f.Path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", f.Name, err)
				}
				params.Text = string(data)
				if err := runImport(eng, f.Name, params); err != nil {
					return err
				}
				if !dryRun {
					if err := importer.MarkProcessed(eng.Root, f.Name); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and report without committing")
	cmd.Flags().BoolVar(&force, "force", false, "commit despite an out-of-balance batch (audited)")
	cmd.Flags().StringVar(&source, "source", "", "source system profile (default from tickmark.yaml)")
	cmd.Flags().StringVar(&period, "period", string(model.PeriodAnnual), "period type: annual, quarterly, monthly, interim")
	cmd.Flags().StringVar(&periodEnd, "period-end", "", "period end date (YYYY-MM-DD, default today)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "column override field=index, e.g. --set debit_balance=2")

	return cmd
}

func runImport(eng *engagement.Engagement, name string, params engagement.ImportParams) error {
	out, err := eng.Import(params)
	printResult(name, out.Result)
	if err != nil {
		return err
	}
	if out.Committed {
		fmt.Printf("Imported batch %s (%d accounts)\n", out.Batch.ID, out.Result.Summary.TotalAccounts)
	}
	return nil
}

func parseOverrides(sets []string) (map[parse.Field]int, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	overrides := make(map[parse.Field]int, len(sets))
	for _, s := range sets {
		field, val, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expected field=index", s)
		}
		col, err := strconv.Atoi(val)
		if err != nil || col < 0 {
			return nil, fmt.Errorf("invalid column index in --set %q", s)
		}
		overrides[parse.Field(field)] = col
	}
	return overrides, nil
}

func printResult(name string, result trialbalance.ValidationResult) {
	s := result.Summary
	fmt.Printf("%s: %d accounts, debits %s, credits %s, variance %s\n",
		name, s.TotalAccounts, s.TotalDebits.StringFixed(2), s.TotalCredits.StringFixed(2), s.Variance.StringFixed(2))
	for _, issue := range result.Errors {
		fmt.Println("  error: " + formatIssue(issue))
	}
	for _, issue := range result.Warnings {
		fmt.Println("  warning: " + formatIssue(issue))
	}
}

func formatIssue(issue trialbalance.Issue) string {
	if issue.Row > 0 {
		return fmt.Sprintf("row %d: %s", issue.Row, issue.Message)
	}
	return issue.Message
}
