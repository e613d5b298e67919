package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datapost/internal/datapost"
)

func newTypesCmd(*globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the supported file types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := datapost.DefaultRegistry()
			for _, t := range reg.Types() {
				kind, err := reg.Lookup(t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t, kind.Codec.MediaType())
			}
			return nil
		},
	}
}
