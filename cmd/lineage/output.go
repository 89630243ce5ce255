package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
)

// outputResult writes result to stdout in the configured format.
func outputResult(result CLIResult) error {
	if cfg != nil && cfg.Format == "text" {
		return outputResultText(stdout, result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	hint := errors.FlattenHints(err)
	if cfg != nil && cfg.Format == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
		Hint:    hint,
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}
