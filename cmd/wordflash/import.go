package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/importer"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|file.xlsx>",
		Short: "Load word pairs into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer st.close()

			res, err := importer.New(st.words).ImportFile(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed %d, imported %d, skipped %d, new sets %d\n",
				res.Processed, res.Imported, res.Skipped, res.SetsCreated)
			for _, e := range res.Errors {
				fmt.Fprintln(out, "  "+e)
			}
			return nil
		},
	}
}
