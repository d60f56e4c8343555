package main

import (
	_ "embed"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/cscript"
	"github.com/zephyrtronium/cscript/console"
	// import for side effects
	_ "github.com/zephyrtronium/cscript/coreext"
)

//go:embed bootstrap.cs
var bootstrap string

func main() {
	var (
		cfgPath string
		listen  string
		verbose bool
		plain   bool
	)
	flag.StringVar(&cfgPath, "config", "", "YAML console configuration file")
	flag.StringVar(&listen, "listen", "", "serve websocket consoles on this address instead of the terminal")
	flag.BoolVar(&verbose, "v", false, "log at debug level")
	flag.BoolVar(&plain, "plain", false, "read standard input without line editing")
	flag.Parse()

	cfg := console.DefaultConfig()
	if cfgPath != "" {
		var err error
		if cfg, err = console.LoadConfig(cfgPath); err != nil {
			fail(err)
		}
	}
	if listen != "" {
		cfg.Listen = listen
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		fail(err)
	}
	log.SetLevel(lvl)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	setup := func(sh *cscript.Shell) error {
		if _, err := sh.Eval(bootstrap); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		if err := console.RunScripts(sh, cfg.Bootstrap...); err != nil {
			return err
		}
		return console.RunScripts(sh, flag.Args()...)
	}

	if cfg.Listen != "" {
		log.WithField("addr", cfg.Listen).Info("serving websocket consoles")
		fail(http.ListenAndServe(cfg.Listen, console.Handler(log, setup)))
	}

	var c cscript.Console
	if plain {
		c = console.NewReader(os.Stdin, os.Stdout)
	} else {
		c = console.NewTerminal(cfg)
	}
	sh := cscript.NewShell(c, log)
	if err := setup(sh); err != nil {
		sh.Report(err)
	}
	if err := sh.Run(); err != nil {
		fail(err)
	}
}

func fail(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}
