package main

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	var manifestPath, outDir, schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run an export on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cron.New()
			_, err := c.AddFunc(schedule, func() {
				m, err := loadManifest(manifestPath)
				if err != nil {
					fmt.Fprintln(os.Stderr, "watch: load manifest:", err)
					return
				}
				for _, mf := range m.Files {
					if err := exportFile(cmd.Context(), nil, mf, outDir); err != nil {
						fmt.Fprintln(os.Stderr, "watch: export", mf.Path, ":", err)
					}
				}
			})
			if err != nil {
				return err
			}
			c.Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "YAML manifest of files to export")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory for CSVs")
	cmd.Flags().StringVar(&schedule, "schedule", "@hourly", "cron schedule for re-export")
	cmd.MarkFlagRequired("manifest")
	return cmd
}
