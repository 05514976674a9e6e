package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wdm0006/loanprep/pkg/io/parquetio"
	"github.com/wdm0006/loanprep/pkg/prep"
	"github.com/wdm0006/loanprep/pkg/profile"
)

func newInspectCmd() *cobra.Command {
	var (
		topK   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Profile a csv file or summarize a parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			if strings.EqualFold(filepath.Ext(path), ".parquet") {
				sum, err := parquetio.Inspect(path)
				if err != nil {
					return failureErr(err)
				}
				fmt.Fprintf(out, "rows: %d\ncolumns: %s\n", sum.Rows, strings.Join(sum.Columns, ", "))
				return nil
			}
			var d rune
			if delimit, _ := cmd.Flags().GetString("delimiter"); delimit != "" {
				d = []rune(delimit)[0]
			}
			f, err := prep.Load(path, d)
			if err != nil {
				return failureErr(err)
			}
			c := profile.Of(f, topK)
			if asJSON {
				b, err := json.MarshalIndent(c.ReportJSON(), "", "  ")
				if err != nil {
					return failureErr(err)
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprint(out, c.ReportText())
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top", 5, "most frequent values listed per string column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the profile as JSON")
	return cmd
}
