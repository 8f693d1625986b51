package main

import (
	"github.com/spf13/pflag"

	"arpscout/internal/config"
)

// Options holds the command-line flags of the watcher.
type Options struct {
	Once      bool     // Run the saved searches once and exit.
	EnvFile   string   // Optional .env file loaded before reading the environment.
	Schedule  string   // Overrides WATCH_SCHEDULE when set.
	ItemCodes []string // Overrides WATCH_ITEM_CODES when set.
}

// NewOptions returns Options with the default values.
func NewOptions() *Options {
	return &Options{EnvFile: ".env"}
}

// AddFlags binds the options to fs, or to pflag.CommandLine when fs is nil.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	fs.BoolVar(&opts.Once, "once", opts.Once, "Run the saved searches once and exit.")
	fs.StringVar(&opts.EnvFile, "env-file", opts.EnvFile, "Path of the .env file, empty to skip it.")
	fs.StringVar(&opts.Schedule, "schedule", opts.Schedule, "Cron schedule, overrides WATCH_SCHEDULE.")
	fs.StringSliceVar(&opts.ItemCodes, "items", opts.ItemCodes, "Item codes to watch, overrides WATCH_ITEM_CODES.")
}

// Apply copies the flags that were set over cfg.
func (opts *Options) Apply(cfg *config.Config) {
	if opts.Schedule != "" {
		cfg.WatchSchedule = opts.Schedule
	}
	if len(opts.ItemCodes) > 0 {
		cfg.WatchItemCodes = opts.ItemCodes
	}
}
