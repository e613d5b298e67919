package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errMissing makes exists exit non-zero without printing usage.
var errMissing = errors.New("file does not exist")

func newExistsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name.type>",
		Short: "Report whether a file exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := a.Service.Exists(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			if !ok {
				return errMissing
			}
			return nil
		},
	}
}
