package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newTablesCommand() *cobra.Command {
	var sparkline bool
	cmd := &cobra.Command{
		Use:   "tables <file.tps>",
		Short: "List discovered tables and their record counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openWithPasswordPrompt(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			names := f.Tables()
			sort.Strings(names)

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"table", "records"})

			counts := make([]float64, 0, len(names))
			for _, name := range names {
				if err := f.SetCurrentTable(name); err != nil {
					return err
				}
				n := 0
				for _, iterErr := range f.All() {
					if iterErr != nil {
						return iterErr
					}
					n++
				}
				table.Append([]string{name, fmt.Sprint(n)})
				counts = append(counts, float64(n))
			}
			table.Render()

			if sparkline && len(counts) > 1 {
				fmt.Println(asciigraph.Plot(counts, asciigraph.Height(10), asciigraph.Caption("record counts per table")))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sparkline, "sparkline", false, "print a record-count sparkline across tables")
	return cmd
}
