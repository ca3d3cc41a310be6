package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arloliu/flexcol/column"
	"github.com/arloliu/flexcol/envelope"
	"github.com/arloliu/flexcol/internal/encoding"
)

func newDecodeCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "decode",
		Short: "Print the logical JSON of a stored value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}

			set, colOpts, err := columnSetup(cmd, cfg)
			if err != nil {
				return err
			}

			col, err := column.New(set, column.NewStaticSource(stdinSource), input, colOpts...)
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
}

func newEncodeCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON object as a stored value",
		Long: `Encode a JSON object read from stdin as a stored value, using the
column settings of the schema. An empty result (null) prints nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := readObject(cmd.InOrStdin())
			if err != nil {
				return err
			}

			set, colOpts, err := columnSetup(cmd, cfg)
			if err != nil {
				return err
			}

			col, err := column.New(set, column.NewStaticSource(stdinSource), obj, colOpts...)
			if err != nil {
				return err
			}

			stored, err := col.ToStoredData()
			if err != nil {
				return err
			}

			return writeStored(cmd.OutOrStdout(), stored)
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the envelope header and sizes of a stored value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}

			decoded, err := envelope.Decode(input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if decoded.Framed {
				_, err = fmt.Fprintf(out, "framed: true\nversion: %d\ncompression: %s\nstored_bytes: %d\npayload_bytes: %d\n",
					decoded.Header.Version, decoded.Header.Compression, len(input), len(decoded.Payload))
			} else {
				_, err = fmt.Fprintf(out, "framed: false\nstored_bytes: %d\npayload_bytes: %d\n",
					len(input), len(decoded.Payload))
			}

			return err
		},
	}
}

func readObject(r io.Reader) (map[string]any, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	parsed, err := encoding.DecodeJSON(input)
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("input must be a JSON object, got %s", encoding.Shape(parsed))
	}

	return obj, nil
}

func writeStored(w io.Writer, stored any) error {
	var err error
	switch v := stored.(type) {
	case nil:
	case string:
		_, err = io.WriteString(w, v)
	case []byte:
		_, err = w.Write(v)
	case map[string]any:
		var text []byte
		text, err = encoding.EncodeJSON(v)
		if err == nil {
			_, err = w.Write(text)
		}
	default:
		err = fmt.Errorf("unexpected stored value type %T", stored)
	}

	return err
}
