package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdslides/internal/yamlutil"
)

// configFlags holds all flags for the config command.
type configFlags struct {
	common commonFlags
	render renderFlags
}

func parseConfigFlags(args []string) (*configFlags, []string, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	f := &configFlags{}

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printConfigUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// runConfig prints the effective configuration as YAML, after the config
// file, MDSLIDES_* variables and flags are applied. The output is a valid
// config file.
func runConfig(args []string, env *Environment) error {
	f, positional, err := parseConfigFlags(args)
	if err != nil {
		return errUsageOrHelp(err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: config takes no arguments", ErrUsage)
	}
	warnUnknownEnvVars(env.Stderr)

	cfg, path, err := loadConfig(f.common.config, loadEnvConfig())
	if err != nil {
		return err
	}
	mergeRenderFlags(f.render, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	if path != "" && !f.common.quiet {
		fmt.Fprintf(env.Stdout, "# from %s\n", path)
	}
	_, err = env.Stdout.Write(out)
	return err
}
