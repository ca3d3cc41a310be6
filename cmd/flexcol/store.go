package main

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/arloliu/flexcol/store"
)

type storeFlags struct {
	dir   string
	table string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "db", "", "pebble database directory")
	cmd.Flags().StringVar(&f.table, "table", "", "table name")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("table")
}

func newPutCmd(cfg *Config) *cobra.Command {
	flags := &storeFlags{}

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Store a JSON object as a new row and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := readObject(cmd.InOrStdin())
			if err != nil {
				return err
			}

			set, colOpts, err := columnSetup(cmd, cfg)
			if err != nil {
				return err
			}

			db, err := store.Open(flags.dir, nil, store.WithLogger(initLogger(cmd.ErrOrStderr(), cfg.Verbose)))
			if err != nil {
				return err
			}
			defer db.Close()

			col, err := store.NewColumn(set, flags.table, obj, colOpts...)
			if err != nil {
				return err
			}

			id, err := db.Insert(flags.table, col)
			if err != nil {
				return fmt.Errorf("failed to store row: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), id.String())

			return err
		},
	}
	flags.register(cmd)

	return cmd
}

func newGetCmd(cfg *Config) *cobra.Command {
	flags := &storeFlags{}

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print the logical JSON of a stored row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid row id %q: %w", args[0], err)
			}

			set, colOpts, err := columnSetup(cmd, cfg)
			if err != nil {
				return err
			}

			db, err := store.Open(flags.dir, nil, store.WithLogger(initLogger(cmd.ErrOrStderr(), cfg.Verbose)))
			if err != nil {
				return err
			}
			defer db.Close()

			col, err := db.Load(flags.table, id, set, colOpts...)
			if err != nil {
				return err
			}

			out, err := col.ToJSON()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

			return err
		},
	}
	flags.register(cmd)

	return cmd
}
