package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbalmain/ferret-sub000/core/index"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <dir>",
		Short: "Verify every segment of an index",
		Long: `Opens every segment of the index and reads back its norms, term
dictionary, postings, stored fields and term vectors.

Do not run this while a writer has the index open.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}
}

func runCheck(cmd *cobra.Command, path string) error {
	dir, err := openDirectory(path)
	if err != nil {
		return err
	}
	defer dir.Close()

	status, err := index.NewCheckIndex(dir, cmd.OutOrStdout()).CheckIndex()
	if err != nil {
		return err
	}
	if status.MissingSegments {
		return fmt.Errorf("no index found in %v", path)
	}
	if !status.Clean {
		return fmt.Errorf("%v of %v segments are broken", status.NumBadSegments, status.NumSegments)
	}
	return nil
}
