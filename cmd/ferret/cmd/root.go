// Package cmd provides the commands of the ferret CLI.
package cmd

import (
	"os"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
)

var verbose bool

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ferret",
		Short: "Inspect and maintain ferret indexes",
		Long: `ferret works on the segment files of an index directory.

It can list segments and terms, verify every segment, merge an index
down to a single segment and add plain text files as documents.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log writer activity to stderr")

	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newTermsCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newOptimizeCmd())
	cmd.AddCommand(newAddCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(verbose bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(
		`%{time:15:04:05.000} %{module} %{level:.4s} %{message}`,
	))
	leveled := logging.AddModuleLevel(formatted)
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
		util.SetDefaultInfoStream(util.NewLoggingInfoStream("ferret"))
	} else {
		leveled.SetLevel(logging.WARNING, "")
	}
	logging.SetBackend(leveled)
}

func openDirectory(path string) (*store.FSDirectory, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return store.OpenFSDirectory(path, nil)
}
