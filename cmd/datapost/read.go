package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCmd(flags *globalFlags) *cobra.Command {
	var decode bool

	cmd := &cobra.Command{
		Use:   "read <name.type>",
		Short: "Print a file's content",
		Long:  `Print the raw content of a file, or with --decode the value its codec produces, as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !decode {
				content, err := a.Service.ReadFile(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}

			doc, err := a.Service.Load(ctx, args[0])
			if err != nil {
				return err
			}
			v, err := doc.Load(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
	cmd.Flags().BoolVar(&decode, "decode", false, "decode with the type's codec and print JSON")
	return cmd
}
