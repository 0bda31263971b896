package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/synthrack/engine/internal/synth"
)

func inspectCommand(args []string) error {
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
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

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	wrap := width >= 100

	printModules(ws, wrap)
	printConnections(ws)
	printPlan(ws)
	return nil
}

func printModules(ws *synth.Workspace, wrap bool) {
	fmt.Println("modules:")
	for _, m := range ws.Modules() {
		pos := ws.Position(m.ID())
		if wrap {
			fmt.Printf("  %-36s %-16s in=%d out=%d  @(%.0f,%.0f)\n",
				m.ID(), m.CatalogName(), m.NumInputs(), m.NumOutputs(), pos.X, pos.Y)
		} else {
			fmt.Printf("  %s\n    catalog=%s in=%d out=%d\n",
				m.ID(), m.CatalogName(), m.NumInputs(), m.NumOutputs())
		}
	}
}

func printConnections(ws *synth.Workspace) {
	fmt.Println("connections:")
	for _, m := range ws.Modules() {
		for i := uint8(0); i < m.NumInputs(); i++ {
			src, srcPort, connected := m.GetInput(i)
			if !connected {
				continue
			}
			fmt.Printf("  %s:%s -> %s:%s\n",
				src.ID(), src.OutputLabel(srcPort), m.ID(), m.InputLabel(i))
		}
	}
}

func printPlan(ws *synth.Workspace) {
	fmt.Println("plan:")
	for i, m := range ws.Plan() {
		fmt.Printf("  %3d  %-16s %s\n", i, m.CatalogName(), m.ID())
	}
}
