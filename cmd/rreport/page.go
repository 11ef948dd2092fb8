package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPageCmd(opts *globalOptions) *cobra.Command {
	var size, page int

	cmd := &cobra.Command{
		Use:   "page <file>",
		Short: "Print one page of a file's rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("page-size") {
				size = opts.cfg.Display.DefaultPageSize
			}
			if !cmd.Flags().Changed("page") {
				page = opts.cfg.Display.DefaultPage
			}

			svc, sess, err := opts.analyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := svc.Page(sess, size, page)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), opts.output, p, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Rows %d to %d of %d (page %d of %d)\n", p.Start(), p.End(), p.TotalRows, p.PageNumber, p.TotalPages)
				fmt.Fprintf(w, "\t%s\n", strings.Join(p.Columns, "\t"))
				for i, row := range p.Rows {
					fmt.Fprintf(w, "%s\t%s\n", strconv.Itoa(p.StartIndex+i), strings.Join(row, "\t"))
				}
			})
		},
	}

	cmd.Flags().IntVar(&size, "page-size", 0, "rows per page, 5 to 100 (default DISPLAY_DEFAULT_PAGE_SIZE)")
	cmd.Flags().IntVar(&page, "page", 0, "1-based page number (default DISPLAY_DEFAULT_PAGE)")
	return cmd
}
