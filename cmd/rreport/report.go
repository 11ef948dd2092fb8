package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newReportCmd(opts *globalOptions) *cobra.Command {
	var (
		format     string
		outPath    string
		sampleRows int
		noCorr     bool
	)

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Generate the EDA report of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sample-rows") {
				opts.cfg.Report.SampleRows = sampleRows
			}
			if noCorr {
				opts.cfg.Report.Correlations = false
			}

			_, sess, err := opts.analyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, r := sess.Get()

			var out string
			switch format {
			case "text":
				out = r.Text()
			case "markdown", "md":
				out = r.Markdown()
			case "html":
				if out, err = r.HTML(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported --format %q (use text, markdown or html)", format)
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if _, err := io.WriteString(w, out); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "report format: text, markdown or html")
	cmd.Flags().StringVar(&outPath, "out", "", "write the report to this file instead of stdout")
	cmd.Flags().IntVar(&sampleRows, "sample-rows", 0, "number of sample rows (overrides REPORT_SAMPLE_ROWS)")
	cmd.Flags().BoolVar(&noCorr, "no-corr", false, "skip the correlation matrix")
	return cmd
}
