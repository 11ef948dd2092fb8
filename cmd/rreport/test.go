package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/JonMunkholm/rreport/internal/core"
	"github.com/JonMunkholm/rreport/internal/stats"
	"github.com/spf13/cobra"
)

func newTestCmd(opts *globalOptions) *cobra.Command {
	var (
		req    core.TestRequest
		csvDir string
	)

	cmd := &cobra.Command{
		Use:   "test <file> <chi2|ks|mann-whitney|shapiro>",
		Short: "Run a statistical test on a file",
		Example: `  rreport test survey.csv chi2 --var1 gender --var2 answer
  rreport test survey.csv ks --column age
  rreport test survey.csv mann-whitney --column score --group gender
  rreport test survey.csv shapiro --column score -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			test, err := core.ParseTest(args[1])
			if err != nil {
				return err
			}
			req.Test = test

			svc, sess, err := opts.analyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := svc.RunTest(cmd.Context(), sess, req)
			if err != nil {
				return err
			}

			if csvDir != "" {
				if err := writeResultCSV(csvDir, res); err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, res, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, res.Test.Title())
				for _, f := range res.Fields {
					fmt.Fprintf(w, "%s\t%s\n", f.Label, stats.FormatValue(f.Value))
				}
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Var1, "var1", "", "first variable (chi2)")
	f.StringVar(&req.Var2, "var2", "", "second variable (chi2)")
	f.StringVar(&req.Column, "column", "", "numeric column (ks, mann-whitney, shapiro)")
	f.StringVar(&req.Group, "group", "", "two-category group column (mann-whitney)")
	f.StringVar(&req.Dist, "dist", "norm", "reference distribution (ks)")
	f.StringVar(&req.Method, "method", "shapiro", "normality test (shapiro)")
	f.StringVar(&csvDir, "csv-dir", "", "also write the result CSV into this directory")
	return cmd
}

func writeResultCSV(dir string, res *stats.Result) error {
	path := filepath.Join(dir, res.ExportName())
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := res.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
