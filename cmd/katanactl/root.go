package main

import (
	"github.com/spf13/cobra"

	"github.com/katanacore/machine/config"
)

var (
	configPath string
	biosPath   string
	imagePath  string
)

var rootCmd = &cobra.Command{
	Use:   "katanactl",
	Short: "Headless control surface for the katanacore machine core",
	Long: "katanactl drives a katanacore Machine's run loop (optionally loading\n" +
		"and writing a save state) and validates boot headers, without any\n" +
		"GUI, display, or audio dependency attached.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (defaults used if absent)")
	rootCmd.PersistentFlags().StringVar(&biosPath, "bios", "", "path to a BIOS ROM image (overrides config)")
	rootCmd.PersistentFlags().StringVar(&imagePath, "image", "", "path to a flat program image to load into main RAM (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(bootinfoCmd)
}

// loadConfig resolves the effective Config from --config plus the
// --bios/--image flag overrides (spec.md's config component, §4 ambient
// stack).
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.NewDisk(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.New()
	}
	if biosPath != "" {
		cfg.BIOSPath = biosPath
	}
	if imagePath != "" {
		cfg.ImagePath = imagePath
	}
	return cfg, nil
}
