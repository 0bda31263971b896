package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/synthrack/engine/internal/synth"
)

func runCommand(args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
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
	if ws.Output() == nil {
		return fmt.Errorf("patch has no output module")
	}

	dp, err := synth.NewDevicePlayer(cfg.SampleRate, cfg.Channels)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	defer dp.Close()

	rt := synth.NewRuntime(ws, nil)
	dp.Attach(rt)
	dp.Start()
	defer dp.Stop()

	fmt.Fprintf(os.Stderr, "synthrackctl: playing %s (%d Hz, %d ch, block %d) — Ctrl-C to stop\n",
		fs.Arg(0), cfg.SampleRate, cfg.Channels, cfg.BufferSize)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}
