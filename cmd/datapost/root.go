package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"datapost/internal/app"
	"datapost/internal/config"
	"datapost/internal/logging"
)

// globalFlags override the environment configuration for one invocation.
type globalFlags struct {
	backend    string
	boltPath   string
	collection string
	exact      bool
	strict     bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "datapost",
		Short: "Read and write typed data files stored as records",
		Long: `datapost manages files addressed as <name>.<type> (prices.json, table.csv)
whose content lives in a record store. The backend defaults to the
environment configuration (DATAPOST_BACKEND, DB_*, BOLT_PATH).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.backend, "backend", "", "record store backend (postgres or bolt)")
	pf.StringVar(&flags.boltPath, "bolt-path", "", "bbolt database file")
	pf.StringVar(&flags.collection, "collection", "", "record collection")
	pf.BoolVar(&flags.exact, "exact", false, "match names exactly instead of by substring")
	pf.BoolVar(&flags.strict, "strict", false, "fail when a name matches more than one file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newReadCmd(flags),
		newWriteCmd(flags),
		newDeleteCmd(flags),
		newExistsCmd(flags),
		newTypesCmd(flags),
	)
	return root
}

// open loads configuration, applies the flags and wires the service.
func (f *globalFlags) open(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.boltPath != "" {
		cfg.BoltPath = f.boltPath
	}
	if f.collection != "" {
		cfg.DataPost.Collection = f.collection
	}
	if f.exact {
		cfg.DataPost.MatchMode = "exact"
	}
	if f.strict {
		cfg.DataPost.Ambiguity = "error"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var w io.Writer = io.Discard
	if f.verbose {
		w = os.Stderr
	}
	return app.New(ctx, cfg, logging.New(w, cfg.Location()))
}
