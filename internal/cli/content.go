package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gigsafe/internal/codec"
)

// stdinPath names standard input in file arguments
const stdinPath = "-"

// openInput resolves a file argument to a reader and the codec that parses
// it. format overrides the file extension and is required for stdin.
func openInput(cmd *cobra.Command, path, format string) (io.ReadCloser, codec.Codec, error) {
	var (
		c   codec.Codec
		err error
	)
	switch {
	case format != "":
		c, err = codec.ForFormat(format)
	case path == stdinPath:
		err = fmt.Errorf("--format is required when reading stdin")
	default:
		c, err = codec.ForPath(path)
	}
	if err != nil {
		return nil, nil, err
	}

	if path == stdinPath {
		return io.NopCloser(cmd.InOrStdin()), c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, c, nil
}

func newImportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import posts and gigs from JSON or YAML files",
		Long: "Import reads each file with the codec its extension names, normalizes\n" +
			"every record and stores it. Use - to read stdin together with --format.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			st, err := a.openStack(nil)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			for _, path := range args {
				in, c, err := openInput(cmd, path, format)
				if err != nil {
					return err
				}
				res, err := st.content.Import(cmd.Context(), c, in)
				in.Close()
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				fmt.Fprintf(out, "%s: %d created, %d updated, %d unchanged, %d skipped\n",
					path, res.Created, res.Updated, res.Unchanged, res.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json, jsonl or yaml (default: from extension)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every stored post and gig",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			if err := a.load(); err != nil {
				return err
			}
			st, err := a.openStack(nil)
			if err != nil {
				return err
			}
			defer st.Close()

			if output == "" || output == stdinPath {
				return st.content.Export(cmd.Context(), c, cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := st.content.Export(cmd.Context(), c, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newNormalizeCmd(a *app) *cobra.Command {
	var (
		format string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Print the normalized form of a content file without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}

			in, c, err := openInput(cmd, args[0], format)
			if err != nil {
				return err
			}
			defer in.Close()

			var exporter codec.Exporter = c
			if to != "" {
				if exporter, err = codec.ForFormat(to); err != nil {
					return err
				}
			}

			fragment, err := c.Parse(in)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			normalized, skipped := a.newNormalizer(nil).Fragment(fragment)
			if skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d records\n", skipped)
			}
			return exporter.Export(normalized, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (default: from extension)")
	cmd.Flags().StringVar(&to, "to", "", "output format (default: input format)")
	return cmd
}
