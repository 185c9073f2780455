// Package main generates capability signing keys and issues grants.
package main

import (
	"flag"
	"os"

	capkeycmd "github.com/louisbranch/ledgerworks/internal/cmd/capabilitykey"
	"github.com/louisbranch/ledgerworks/internal/platform/config"
)

func main() {
	cfg, err := capkeycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := capkeycmd.Run(os.Stdout, cfg); err != nil {
		config.Exitf("capability key: %v", err)
	}
}
