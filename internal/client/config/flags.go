package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentportal/internal/flagx"
)

// parseFlags overlays cfg with the flags this package owns. Other flags on the
// command line are filtered out with flagx.FilterArgs and left alone. The
// timeout is only touched when -t is given, so sub-second file values survive.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-e", "-d", "-t"})

	fs := flag.NewFlagSet("agent", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.Environment, "e", cfg.Environment, "deployment environment")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local session database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "API request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
