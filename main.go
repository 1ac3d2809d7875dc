// Package main implements a CHIP-8 interpreter.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

var errUsage = errors.New("wrong number of arguments")

type optionFlags struct {
	rom string

	debug bool
	quiet bool
}

func main() {
	options, err := readArguments(os.Args[1:])
	if err != nil {
		os.Exit(argumentsExitCode(err))
	}

	logger := createLogger(options.debug, options.quiet)
	logger.Info("chip8 interpreter", log.String("version", buildinfo.Version(version, commit, date)))

	m := newMachine()
	if err := m.readRomFile(options.rom); err != nil {
		logger.Error("Loading ROM failed", log.Err(err))
		os.Exit(1)
	}
	logger.Debug("ROM loaded", log.String("file", options.rom))

	in := newInterpreter(logger, options.debug)
	g := newGame(app.Context(), m, in)
	if err := g.run(); err != nil {
		logger.Error("Running interpreter failed", log.Err(err))
		os.Exit(1)
	}
}

// readArguments parses the command line. Exactly one positional argument,
// the ROM file, is accepted.
func readArguments(args []string) (optionFlags, error) {
	flags := flag.NewFlagSet("chip8", flag.ContinueOnError)
	options := optionFlags{}

	flags.BoolVar(&options.debug, "debug", false, "trace every executed instruction")
	flags.BoolVar(&options.quiet, "q", false, "perform operations quietly")

	if err := flags.Parse(args); err != nil {
		return options, err
	}

	if flags.NArg() != 1 {
		fmt.Fprintf(flags.Output(), "usage: chip8 [options] <ROM file>\n\n")
		flags.PrintDefaults()
		return options, errUsage
	}
	options.rom = flags.Arg(0)

	return options, nil
}

// argumentsExitCode returns the process status for a failed readArguments.
// Asking for help with -h is not a failure.
func argumentsExitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 1
}
