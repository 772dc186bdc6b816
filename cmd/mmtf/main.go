package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

const (
	exitSuccess    = 0
	exitFailure    = 1
	exitUsageError = 2
)

// errFound is returned by commands which ran, but found broken files.
// The details have already been written.
var errFound = errors.New("problems found")

func mymain() int {
	err := execute(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errFound):
		return exitFailure
	}
	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, errUsage) {
		return exitUsageError
	}
	return exitFailure
}

func main() {
	os.Exit(mymain())
}
