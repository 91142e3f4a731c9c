// Command ferret inspects and maintains ferret indexes.
package main

import (
	"os"

	"github.com/dbalmain/ferret-sub000/cmd/ferret/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
