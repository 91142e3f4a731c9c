package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbalmain/ferret-sub000/core/index"
)

func newTermsCmd() *cobra.Command {
	var field, prefix string

	cmd := &cobra.Command{
		Use:   "terms <dir>",
		Short: "List the terms of an index with their document frequency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if prefix != "" && field == "" {
				return fmt.Errorf("--prefix requires --field")
			}
			return runTerms(cmd, args[0], field, prefix)
		},
	}

	cmd.Flags().StringVarP(&field, "field", "f", "", "Only list terms of this field")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Only list terms starting with this text")
	return cmd
}

func runTerms(cmd *cobra.Command, path, field, prefix string) error {
	dir, err := openDirectory(path)
	if err != nil {
		return err
	}
	defer dir.Close()

	reader, err := index.Open(dir)
	if err != nil {
		return err
	}
	defer reader.Close()

	var terms index.TermEnum
	if field != "" {
		terms, err = index.NewPrefixTermEnum(reader, index.NewTerm(field, prefix))
	} else {
		terms, err = reader.Terms()
		if err == nil {
			_, err = terms.Next()
		}
	}
	if err != nil {
		return err
	}
	defer terms.Close()

	out := cmd.OutOrStdout()
	for term := terms.Term(); term != nil; term = terms.Term() {
		fmt.Fprintf(out, "%v\t%v\n", term, terms.DocFreq())
		ok, err := terms.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}
