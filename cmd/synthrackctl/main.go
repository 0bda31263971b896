// Command synthrackctl loads and runs synthrack patch files from the
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: synthrackctl <command> [flags] patch-file\n\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  run       open the default audio device and play the patch\n")
		fmt.Fprintf(os.Stderr, "  validate  load and plan the patch, report errors, exit\n")
		fmt.Fprintf(os.Stderr, "  inspect   print modules, connections, and plan order\n")
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		pflag.PrintDefaults()
	}

	if len(os.Args) < 2 {
		pflag.Usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runCommand(args)
	case "validate":
		err = validateCommand(args)
	case "inspect":
		err = inspectCommand(args)
	case "-h", "--help", "help":
		pflag.Usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "synthrackctl: unknown command %q\n\n", cmd)
		pflag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "synthrackctl %s: %v\n", cmd, err)
		os.Exit(1)
	}
}
