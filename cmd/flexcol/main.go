// Command flexcol decodes, encodes and inspects packed column values, and
// stores them in a pebble database.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arloliu/flexcol/column"
	"github.com/arloliu/flexcol/field"
	"github.com/arloliu/flexcol/format"
	"github.com/arloliu/flexcol/schema"
)

const stdinSource = "stdin"

// Config holds the global flags.
type Config struct {
	SchemaPath   string
	Storage      string
	CompressOver int
	Verbose      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &Config{}

	rootCmd := &cobra.Command{
		Use:   "flexcol",
		Short: "Decode, encode and inspect packed column values",
		Long: `A command-line tool for packed JSON column values.

Values are read from stdin and results written to stdout.

Examples:
  flexcol decode < value.bin
  flexcol encode --schema attrs.toml < fields.json
  flexcol inspect < value.bin
  flexcol put --db ./data --table users --schema attrs.toml < fields.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfg.SchemaPath, "schema", "s", "", "schema file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&cfg.Storage, "storage", "", "override the storage mode: text or binary")
	rootCmd.PersistentFlags().IntVar(&cfg.CompressOver, "compress-over", -1, "compress binary payloads longer than n bytes")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "log codec events to stderr")

	rootCmd.AddCommand(
		newDecodeCmd(cfg),
		newEncodeCmd(cfg),
		newInspectCmd(),
		newPutCmd(cfg),
		newGetCmd(cfg),
	)

	return rootCmd
}

func initLogger(out io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "flexcol").Logger()
}

// columnSetup returns the field set and column options for the global
// flags. Without a schema file every key is an unknown field and values are
// read as binary, which accepts both bare and enveloped data.
func columnSetup(cmd *cobra.Command, cfg *Config) (*field.Set, []column.Option, error) {
	var (
		set     *field.Set
		colOpts []column.Option
	)

	if cfg.SchemaPath == "" {
		empty, err := field.NewSet(stdinSource)
		if err != nil {
			return nil, nil, err
		}
		set = empty
		colOpts = append(colOpts, column.WithStorageMode(format.StorageBinary))
	} else {
		s, err := schema.Load(cfg.SchemaPath)
		if err != nil {
			return nil, nil, err
		}
		set, err = s.FieldSet()
		if err != nil {
			return nil, nil, err
		}
		colOpts = append(colOpts, s.ColumnOptions()...)
	}

	if cfg.Storage != "" {
		mode, err := format.ParseStorageMode(cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		colOpts = append(colOpts, column.WithStorageMode(mode))
	}
	if cfg.CompressOver >= 0 {
		colOpts = append(colOpts, column.WithCompressOver(cfg.CompressOver))
	}

	logger := initLogger(cmd.ErrOrStderr(), cfg.Verbose)
	colOpts = append(colOpts, column.WithObserver(column.NewLogObserver(logger)))

	return set, colOpts, nil
}
