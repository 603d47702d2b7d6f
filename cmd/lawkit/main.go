package main

import (
	"fmt"
	"os"

	"lawkit/internal/errors"
)

// Exit codes
const (
	exitOK           = 0
	exitInternal     = 1
	exitUsage        = 2
	exitInsufficient = 3
	exitComputation  = 4
	exitRisk         = 10
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errRiskExceeded) {
		return exitRisk
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidConfiguration, errors.CodeUnknownLaw, errors.CodeInvalidInput:
		return exitUsage
	case errors.CodeInsufficientData:
		return exitInsufficient
	case errors.CodeComputationError:
		return exitComputation
	default:
		return exitInternal
	}
}
