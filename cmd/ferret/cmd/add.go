package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/index"
)

func newAddCmd() *cobra.Command {
	var configPath string
	var create bool

	cmd := &cobra.Command{
		Use:   "add <dir> <file>...",
		Short: "Add text files to an index, one document per file",
		Long: `Adds every file as a document with two fields: "path", stored and
indexed as a single term, and "contents", tokenized with term vectors.

The index is created when it does not exist yet.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if create {
				conf.SetOpenMode(index.OPEN_MODE_CREATE)
			} else {
				conf.SetOpenMode(index.OPEN_MODE_CREATE_OR_APPEND)
			}
			return runAdd(cmd, args[0], args[1:], conf)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML file with writer settings")
	cmd.Flags().BoolVar(&create, "create", false, "Replace any existing index")
	return cmd
}

func runAdd(cmd *cobra.Command, path string, files []string, conf *index.IndexWriterConfig) (err error) {
	w, err := index.NewIndexWriterPath(path, conf)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	var total int64
	for _, name := range files {
		n, err := addFile(w, name)
		if err != nil {
			return fmt.Errorf("adding %v: %w", name, err)
		}
		total += n
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %v files (%v), index holds %v documents\n",
		len(files), humanize.Bytes(uint64(total)), humanize.Comma(int64(w.DocCount())))
	return nil
}

func addFile(w *index.IndexWriter, name string) (int64, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if fi.IsDir() {
		return 0, fmt.Errorf("%v is a directory", abs)
	}

	doc := document.NewDocument()
	doc.Add(document.NewStringField("path", abs, document.STORE_YES))
	doc.Add(document.NewTextFieldFromReader("contents", f,
		document.TERM_VECTOR_WITH_POSITIONS_OFFSETS))
	return fi.Size(), w.AddDocument(doc)
}
