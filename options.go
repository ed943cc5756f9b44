package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/profile"

	"github.com/ushitora-anqou/gbemu/constant"
)

type options struct {
	romPath    string
	scale      int
	trace      bool
	cpuProfile string
	wavPath    string
	noSave     bool
}

// parseOptions reads the command line. GBEMU_TRACE=1 and
// GBEMU_CPUPROFILE=<dir> stand in for -trace and -cpuprofile.
func parseOptions() (*options, error) {
	opts := &options{}
	flag.IntVar(&opts.scale, "scale", constant.WINDOW_SCALE, "window scale factor")
	flag.BoolVar(&opts.trace, "trace", false, "trace every instruction to stderr")
	flag.StringVar(&opts.cpuProfile, "cpuprofile", "", "write a CPU profile into `dir`")
	flag.StringVar(&opts.wavPath, "wav", "", "record audio to `file`")
	flag.BoolVar(&opts.noSave, "nosave", false, "neither load nor write the .sav file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [OPTIONS] PATH\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		return nil, fmt.Errorf("Usage: %s [OPTIONS] PATH", os.Args[0])
	}
	opts.romPath = flag.Arg(0)
	if os.Getenv("GBEMU_TRACE") == "1" {
		opts.trace = true
	}
	if dir := os.Getenv("GBEMU_CPUPROFILE"); dir != "" && opts.cpuProfile == "" {
		opts.cpuProfile = dir
	}
	if opts.scale < 1 {
		opts.scale = 1
	}
	return opts, nil
}

type nopStopper struct{}

func (nopStopper) Stop() {}

func (opts *options) startProfile() interface{ Stop() } {
	if opts.cpuProfile == "" {
		return nopStopper{}
	}
	return profile.Start(
		profile.CPUProfile,
		profile.ProfilePath(opts.cpuProfile),
		profile.NoShutdownHook,
	)
}
