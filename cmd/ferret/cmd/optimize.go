package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbalmain/ferret-sub000/core/analysis"
	"github.com/dbalmain/ferret-sub000/core/index"
)

func newOptimizeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "optimize <dir>",
		Short: "Merge all segments of an index into one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			conf.SetOpenMode(index.OPEN_MODE_APPEND)
			return runOptimize(cmd, args[0], conf)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML file with writer settings")
	return cmd
}

func loadConfig(path string) (*index.IndexWriterConfig, error) {
	analyzer := analysis.NewStandardAnalyzer()
	if path == "" {
		return index.NewIndexWriterConfig(analyzer), nil
	}
	return index.LoadIndexWriterConfig(path, analyzer)
}

func runOptimize(cmd *cobra.Command, path string, conf *index.IndexWriterConfig) (err error) {
	if _, err = os.Stat(path); err != nil {
		return err
	}
	w, err := index.NewIndexWriterPath(path, conf)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	before := w.SegmentCount()
	start := time.Now()
	if err = w.Optimize(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "merged %v segments holding %v documents in %v\n",
		before, w.DocCount(), time.Since(start).Round(time.Millisecond))
	return nil
}
