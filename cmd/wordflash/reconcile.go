package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/services"
)

func newReconcileCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute shown_count from the event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer st.close()

			svc := services.NewReconcileService(st.reconcile, retryPolicy(a.cfg))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if dryRun {
				mismatches, err := svc.Check(ctx)
				if err != nil && !errors.HasCode(err, errors.ErrCodeInvariantViolation) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d records would be fixed\n", len(mismatches))
				return enc.Encode(mismatches)
			}

			report, err := svc.ReconcileShownCounts(ctx)
			if err != nil {
				return err
			}
			return enc.Encode(report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report drifted rows without changing them")
	return cmd
}
