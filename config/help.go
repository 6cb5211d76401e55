package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `ride-dispatch - real-time ride dispatch coordinator

Usage:
  dispatch [flags]

Flags:
  -config-path string   path to YAML config file (optional, env vars work without it)
  -help                 print this message and exit

Every config value can be set through environment variables,
see config/config.go for the full list of names and defaults.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
