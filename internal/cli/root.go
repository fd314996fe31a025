// Package cli implements the tabula command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bjaus/tabula"
	"github.com/bjaus/tabula/internal/expr"
	"github.com/bjaus/tabula/internal/input"
	"github.com/bjaus/tabula/internal/logger"
	"github.com/bjaus/tabula/view"
)

const example = `  # Table from a JSON array
  tabula rows.json

  # Pick columns, reach into nested values, cap the total width
  kubectl get pods -o json | jq .items | tabula -f metadata,status --chain metadata=name --chain status=phase --max-width 80

  # Transform a column with CEL and number the rows
  tabula -n --filter 'size=_ / 1024' files.yaml

  # One block per record
  tabula --vertical servers.toml`

// NewRootCommand returns the tabula command.
func NewRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "tabula [file]",
		Short:         "Render structured data as a text table",
		Long:          "tabula reads a JSON, YAML or TOML document and prints its records as a bordered table sized to the terminal.",
		Example:       example,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd.Context(), cmd, f, path)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.format, "format", "F", "auto", "input format: auto, json, yaml or toml")
	fs.StringSliceVarP(&f.fields, "fields", "f", nil, "columns to show, in order (names or sequence indices)")
	fs.StringSliceVar(&f.headerList, "headers", nil, "header labels, in column order")
	fs.StringToStringVar(&f.headers, "header", nil, "header label for a field, as field=label")
	fs.BoolVarP(&f.noHeaders, "no-headers", "H", false, "omit the header row")
	fs.StringToIntVar(&f.fieldLengths, "field-length", nil, "width for a field, as field=n")
	fs.IntVarP(&f.maxWidth, "max-width", "w", 0, "total table width (default: terminal width)")
	fs.BoolVar(&f.noLimit, "no-limit", false, "never truncate columns")
	fs.StringArrayVar(&f.filters, "filter", nil, "CEL expression applied to a field, as field=expr; the value is _")
	fs.StringArrayVar(&f.chains, "chain", nil, "accessor chain applied to a field, as field=a.b.c")
	fs.BoolVarP(&f.number, "number", "n", false, "prepend a row number column")
	fs.BoolVarP(&f.vertical, "vertical", "V", false, "print one block per record")
	fs.StringVar(&f.variant, "variant", "", "layout variant: table or vertical")
	fs.StringVarP(&f.config, "config", "c", "", "path to a YAML config file")
	fs.BoolVar(&f.noPager, "no-pager", false, "never page output")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	cmd.MarkFlagsMutuallyExclusive("max-width", "no-limit")
	cmd.MarkFlagsMutuallyExclusive("vertical", "variant")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, f *flags, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	level, err := logger.ParseLevel(f.logLevel)
	if err != nil {
		return err
	}
	log := logger.Get(level).WithValues(logger.CommandKey, cmd.Name())
	ctx = logger.WithLogger(ctx, &log)

	cfg, err := view.LoadConfig(f.config)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if f.noPager || !view.IsTerminal(out) {
		off := false
		cfg.Pager = &off
	}

	ev, err := expr.NewEvaluator(log)
	if err != nil {
		return err
	}
	opts, err := f.options(ev)
	if err != nil {
		return err
	}

	format, err := input.ParseFormat(f.format)
	if err != nil {
		return err
	}
	if format == input.Auto {
		format = input.FormatFromPath(path)
	}
	r, closeInput, err := openInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeInput()
	records, err := input.Decode(r, format)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.V(1).Info("decoded input", "path", path, "format", string(format), "records", len(records))

	v := view.New(cfg, view.WithOutput(out), view.WithLogger(log))
	if err := v.Enable(view.Config{}); err != nil {
		return err
	}
	handled, err := v.Render(ctx, records, opts)
	if err != nil || handled || len(records) == 0 {
		return err
	}
	log.V(1).Info("formatter off, printing plain records")
	return v.CaptureAndRender(ctx, func(w io.Writer) error {
		return writePlain(w, records)
	})
}

// writePlain prints one unformatted line per record. The render method adds
// the final newline.
func writePlain(w io.Writer, records []tabula.Record) error {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

// Execute runs the root command with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
