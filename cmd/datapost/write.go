package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newWriteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "write <name.type> [data]",
		Short: "Create or overwrite a file",
		Long:  `Write data to a file, creating it if needed. Data is read from stdin when omitted.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data string
			if len(args) == 2 {
				data = args[1]
			} else {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				data = string(b)
			}

			ctx := cmd.Context()
			a, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Service.WriteFile(ctx, args[0], data)
		},
	}
}
