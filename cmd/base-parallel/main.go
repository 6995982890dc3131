// Package main is a base console application for multithreaded parallel
// processing: one worker per logical processor, each pinned to its own CPU,
// fed one round at a time by a dispatcher until the round budget is
// exhausted or an interrupt is received.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	parallel "github.com/pbatard/base-parallel"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "[DEV]"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("base-parallel", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to TOML config file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	banner()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		return 1
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()}))

	d, err := parallel.NewDispatcher(payload{}, cfg.options(log)...)
	if err != nil {
		log.Error("could not plan run", "error", err)
		return 1
	}

	return parallel.NewSupervisor(d).Run(context.Background())
}

func banner() {
	fmt.Fprintf(os.Stderr, "base-parallel %s © 2020 Pete Batard <pete@akeo.ie>\n\n", version)
	fmt.Fprintf(os.Stderr, "This program is free software; you can redistribute it and/or modify it under \n")
	fmt.Fprintf(os.Stderr, "the terms of the GNU General Public License as published by the Free Software \n")
	fmt.Fprintf(os.Stderr, "Foundation; either version 3 of the License or any later version.\n\n")
	fmt.Fprintf(os.Stderr, "Official project and latest downloads at: https://github.com/pbatard/base-parallel\n\n")
}

// payload is the dummy work unit: sleep in 100ms ticks up to 25 ticks,
// polling the cancellation capability between ticks so Ctrl-C cuts the work
// short.
type payload struct{}

func (payload) Process(item uint32, cancelled func() bool) parallel.ProcessResult {
	for i := 0; i < 25; i++ {
		if cancelled() {
			return parallel.Cancelled()
		}
		time.Sleep(100 * time.Millisecond)
	}
	return parallel.Done()
}
