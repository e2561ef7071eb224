package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/tokenbucket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	tpsread "github.com/galler-alexander/tpsread"
)

func newExportCommand() *cobra.Command {
	var manifestPath, outDir string
	var rate float64

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tables named in a YAML manifest to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(manifestPath)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = "."
			}

			var bucket tokenbucket.TokenBucket
			bucket.Init(tokenbucket.Rate(rate), rate)

			g, ctx := errgroup.WithContext(cmd.Context())
			for _, mf := range m.Files {
				mf := mf
				g.Go(func() error {
					return exportFile(ctx, &bucket, mf, outDir)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "YAML manifest of files to export")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory for CSVs")
	cmd.Flags().Float64Var(&rate, "rate", 2000, "max records/sec throttled through the token bucket")
	cmd.MarkFlagRequired("manifest")
	return cmd
}

func exportFile(ctx context.Context, bucket *tokenbucket.TokenBucket, mf manifestFile, outDir string) error {
	defaults, err := loadDefaults()
	if err != nil {
		return err
	}
	encoding := mf.Encoding
	if encoding == "" {
		encoding = defaults.Encoding
	}

	f, err := tpsread.Open(tpsread.Options{
		Filename:       mf.Path,
		Encoding:       encoding,
		Check:          defaults.Check,
		DateFieldNames: mf.DateKeys,
		TimeFieldNames: mf.TimeKeys,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", mf.Path, err)
	}
	defer f.Close()

	if err := f.SetCurrentTable(mf.Table); err != nil {
		return err
	}

	outPath := filepath.Join(outDir, mf.Table+".csv")
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	var header []string
	for row, err := range f.All() {
		if err != nil {
			return fmt.Errorf("%s: %w", mf.Path, err)
		}
		if bucket != nil {
			if err := bucket.Wait(ctx, 1); err != nil {
				return err
			}
		}
		if header == nil {
			for name := range row {
				header = append(header, name)
			}
			if err := w.Write(header); err != nil {
				return err
			}
		}
		record := make([]string, len(header))
		for i, name := range header {
			record[i] = fmt.Sprint(row[name])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
