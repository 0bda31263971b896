package main

import (
	"fmt"

	"github.com/spf13/pflag"
)

func validateCommand(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	cfgFn := configFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one patch-file argument, got %d", fs.NArg())
	}
	cfg := cfgFn()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ws, err := loadPatchFile(fs.Arg(0), cfg)
	if err != nil {
		return err
	}

	plan := ws.Plan()
	fmt.Printf("ok: %d module(s), %d step plan", len(ws.Modules()), len(plan))
	if ws.Output() == nil {
		fmt.Printf(" (no output module set)\n")
	} else {
		fmt.Printf(", output=%s\n", ws.Output().ID())
	}
	return nil
}
