package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAssignCmd(a *app) *cobra.Command {
	var (
		userID  int64
		setName string
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Restrict a user's study pool to a word set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user must be a positive id")
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer st.close()

			set, err := st.words.FindWordSet(ctx, setName)
			if err != nil {
				return fmt.Errorf("word set %q: %w", setName, err)
			}
			if _, err := st.users.Ensure(ctx, userID); err != nil {
				return err
			}
			if err := st.words.AssignWordSet(ctx, userID, set.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "assigned set %q to user %d\n", set.Name, userID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&setName, "set", "", "word set name")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}
