package main

import "github.com/spf13/cobra"

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name.type>",
		Short: "Delete a file",
		Long:  `Delete a file's record. Deleting a missing file is not an error.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Service.Delete(ctx, args[0])
		},
	}
}
