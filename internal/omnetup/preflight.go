package omnetup

import (
	"fmt"
	"os/exec"
)

// condaTools lists accepted managers, fastest first. micromamba and mamba
// are drop-in replacements for the conda subcommands this workflow uses.
var condaTools = []string{"micromamba", "mamba", "conda"}

// findManager returns the first conda-compatible manager present in PATH,
// honoring an explicit OMNETUP_TOOL override.
func findManager(cfg *Config) (string, error) {
	if cfg.Tool != "" {
		if _, err := exec.LookPath(cfg.Tool); err != nil {
			return "", fmt.Errorf("configured tool %q not found in PATH: %w", cfg.Tool, err)
		}
		return cfg.Tool, nil
	}
	for _, tool := range condaTools {
		if _, err := exec.LookPath(tool); err == nil {
			return tool, nil
		}
	}
	return "", errNoManager
}

// preflight verifies the hard precondition for every subsequent step and
// records the resolved manager in the config.
func preflight(cfg *Config) error {
	tool, err := findManager(cfg)
	if err != nil {
		return err
	}
	cfg.Tool = tool
	colArrow.Print("-> ")
	colSuccess.Printf("Using package manager: %s\n", tool)
	return nil
}
