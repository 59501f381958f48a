// Package main is the entry point for the cukai CLI.
package main

import (
	"os"

	"github.com/cukaiku/tax-engine/cmd/cukai/cmd"
	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/logging"
	"go.uber.org/zap"
)

func main() {
	err := cmd.Execute()
	if err != nil && engine.IsConfigError(err) {
		// A broken schedule is an operator problem, not a usage one.
		logging.Fatal("invalid tax schedule", zap.Error(err))
	}
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
