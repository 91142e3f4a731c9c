package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dbalmain/ferret-sub000/core/index"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <dir>",
		Short: "Show the segments of an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, path string) error {
	dir, err := openDirectory(path)
	if err != nil {
		return err
	}
	defer dir.Close()

	status, err := index.NewCheckIndex(dir, nil).CheckIndex()
	if err != nil {
		return err
	}
	if status.MissingSegments {
		return fmt.Errorf("no index found in %v", path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Index:    %v\n", dir.Path())
	fmt.Fprintf(out, "Version:  %v\n", status.Version)
	fmt.Fprintf(out, "Segments: %v\n\n", status.NumSegments)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDOCS\tDELETED\tCOMPOUND\tFILES\tSIZE")
	var docs, deleted int
	var size int64
	for _, seg := range status.SegmentInfos {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\t%v\n", seg.Name,
			humanize.Comma(int64(seg.DocCount)), seg.NumDeleted, seg.Compound,
			seg.NumFiles, humanize.Bytes(uint64(seg.SizeBytes)))
		docs += seg.DocCount
		deleted += seg.NumDeleted
		size += seg.SizeBytes
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%v documents (%v deleted), %v\n",
		humanize.Comma(int64(docs)), humanize.Comma(int64(deleted)), humanize.Bytes(uint64(size)))
	if !status.Clean {
		fmt.Fprintf(out, "%v broken segments, run 'ferret check %v' for details\n", status.NumBadSegments, path)
	}
	return nil
}
