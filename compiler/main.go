package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"jackvm/compiler/internal"
)

// A jack compiler: translates a .jack file, or every .jack file of a directory, to hack vm code.

type config struct {
	path    string
	verbose bool
	opts    internal.Options
}

func parseArgs(args []string) (config, error) {
	var cfg config
	flags := flag.NewFlagSet("compiler", flag.ContinueOnError)
	flags.StringVar(&cfg.path, "path", ".", "the jack file or the directory of jack files to compile")
	flags.StringVar(&cfg.opts.OutputDir, "o", "", "the directory for generated files, defaults to the source directory")
	flags.BoolVar(&cfg.opts.DumpTokens, "tokens", false, "whether also write the token stream as <name>T.xml")
	flags.BoolVar(&cfg.opts.Verify, "verify", false, "whether check the stack discipline of generated vm code")
	flags.BoolVar(&cfg.verbose, "v", false, "whether print debug logs")
	err := flags.Parse(args)
	return cfg, err
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	results, err := internal.Compile(cfg.path, cfg.opts)
	if err != nil {
		logrus.Errorf("[Compiler]: failed to compile %s: %v", cfg.path, err)
		os.Exit(1)
	}
	logrus.Infof("[Compiler]: compiled %d file(s)", len(results))
}
