package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"gosieve/app"
	"gosieve/domain/table"
	"gosieve/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// verbose routes pipeline logging to stderr at debug level
var verbose bool

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gosieve",
		Short:         "Clean sentinel values from CSV/XLSX data, chart and correlate columns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !verbose {
				log.SetOutput(io.Discard)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	rootCmd.AddCommand(
		newCleanCmd(),
		newChartCmd(),
		newDescribeCmd(),
		newBatchCmd(),
	)
	return rootCmd
}

// cleanOptions are the cleaning flags shared by clean, chart and describe
type cleanOptions struct {
	sentinel string
	where    string
}

func (o *cleanOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.sentinel, "sentinel", "", "Sentinel value marking bad readings (default from SENTINEL_VALUE or -9999.0)")
	cmd.Flags().StringVar(&o.where, "where", "", `Row filter applied after cleaning, e.g. "depth > 10"`)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newService() (*app.PipelineService, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.NewPipelineService(cfg), nil
}

// prepareFile loads and cleans one file from disk
func prepareFile(ctx context.Context, s *app.PipelineService, path string, opts cleanOptions) (*app.Prepared, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	req := app.PrepareRequest{Name: filepath.Base(path), Data: data, Where: opts.where}
	if opts.sentinel != "" {
		v, err := strconv.ParseFloat(opts.sentinel, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --sentinel %q: %w", opts.sentinel, err)
		}
		req.Sentinel = &v
	}
	return s.Prepare(ctx, req)
}

func newCleanCmd() *cobra.Command {
	var opts cleanOptions
	var format, out string

	cmd := &cobra.Command{
		Use:   "clean FILE",
		Short: "Drop rows holding the sentinel or missing values and export the rest",
		Long: `Load a CSV or XLSX file, drop every row that has the sentinel value or a
missing value in any column, and write the remaining rows.

Example: gosieve clean cast.csv --format xlsx --out cleaned_file.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newService()
			if err != nil {
				return err
			}
			prepared, err := prepareFile(cmd.Context(), s, args[0], opts)
			if err != nil {
				return err
			}

			file, err := s.Export(prepared, format)
			if err != nil {
				return err
			}
			if out == "" {
				out = file.Filename
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(file.Data)
				return err
			}
			if err := os.WriteFile(out, file.Data, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d rows -> %d rows, wrote %s\n",
				args[0], prepared.Clean.SourceRows, prepared.Table.Len(), out)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv|xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", `Output path, "-" for stdout (default cleaned_file.<format>)`)
	return cmd
}

func newChartCmd() *cobra.Command {
	var opts cleanOptions
	var x, kind, htmlOut, xlsxOut string
	var ys []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "chart FILE",
		Short: "Correlate Y columns against an X column and build a chart",
		Long: `Clean the file, melt the selected Y columns against X and report the
Pearson correlation of each Y with X.

Example: gosieve chart cast.csv --x depth --y temp --y salinity --kind scatter --html report.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newService()
			if err != nil {
				return err
			}
			prepared, err := prepareFile(cmd.Context(), s, args[0], opts)
			if err != nil {
				return err
			}

			result, err := s.Chart(prepared, table.Selection{X: x, Y: ys, Kind: table.ChartKind(kind)})
			if err != nil {
				return err
			}

			if htmlOut != "" {
				if err := os.WriteFile(htmlOut, []byte(result.HTML), 0o644); err != nil {
					return err
				}
			}
			if xlsxOut != "" {
				file, err := s.ChartWorkbook(prepared, result)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxOut, file.Data, 0o644); err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), result.Markdown)
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&x, "x", "", "X column")
	cmd.Flags().StringArrayVar(&ys, "y", nil, "Y column (repeatable)")
	cmd.Flags().StringVar(&kind, "kind", "line", "Chart kind: line|scatter|bar|area")
	cmd.Flags().StringVar(&htmlOut, "html", "", "Write the HTML report to this path")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Write a workbook with a native Excel chart to this path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the chart spec and correlations as JSON")
	_ = cmd.MarkFlagRequired("x")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var opts cleanOptions
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "describe FILE",
		Short: "Summarize each column of the cleaned file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newService()
			if err != nil {
				return err
			}
			prepared, err := prepareFile(cmd.Context(), s, args[0], opts)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), prepared)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), s.Report(prepared))
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var outDir, format string
	var parallel int

	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Clean many files independently",
		Long: `Clean every file on its own and write <name>_cleaned.<format> into the
output directory. A file that fails or ends up empty is reported and does not
stop the others.

Example: gosieve batch casts/*.csv --out-dir cleaned --parallel 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if parallel > 0 {
				cfg.Batch.Parallelism = parallel
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			report, err := app.NewPipelineService(cfg).BatchClean(cmd.Context(), args, outDir, format)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, item := range report.Items {
				switch item.Outcome {
				case app.BatchCleaned:
					fmt.Fprintf(w, "%-8s %s -> %s (%d/%d rows kept)\n", item.Outcome, item.Path, item.Output, item.KeptRows, item.SourceRows)
				default:
					fmt.Fprintf(w, "%-8s %s: %s\n", item.Outcome, item.Path, item.Error)
				}
			}
			fmt.Fprintf(w, "run %s: %d cleaned, %d empty, %d failed\n", report.RunID,
				report.Count(app.BatchCleaned), report.Count(app.BatchEmpty), report.Count(app.BatchFailed))

			if report.Count(app.BatchCleaned) == 0 {
				return fmt.Errorf("no file produced output")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "cleaned", "Directory for cleaned files")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv|xlsx")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "Files cleaned at once (default from BATCH_PARALLELISM)")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
