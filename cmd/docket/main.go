package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/docket/internal/cli"
	derrors "github.com/ppiankov/docket/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := derrors.HintOf(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps error categories to process exit codes
func exitCode(err error) int {
	switch derrors.CategoryOf(err) {
	case derrors.CategoryInvalidInput:
		return 2
	case derrors.CategoryOracleFailure:
		return 3
	default:
		return 1
	}
}
