package omnetup

import (
	"fmt"

	"github.com/gookit/color"
)

// handleInfoCommand shows the resolved configuration and the fixed
// dependency set, paged when taller than the terminal.
func handleInfoCommand(cfg *Config) error {
	tool := cfg.Tool
	if tool == "" {
		if found, err := findManager(cfg); err == nil {
			tool = found
		} else {
			tool = "(none found)"
		}
	}

	lines := []string{
		color.Bold.Sprint("Workflow configuration"),
		"",
		fmt.Sprintf("  Version:      %s", cfg.Version),
		fmt.Sprintf("  Archive:      %s", cfg.ArchiveName()),
		fmt.Sprintf("  URL:          %s", cfg.ArchiveURL()),
		fmt.Sprintf("  Environment:  %s", cfg.EnvName),
		fmt.Sprintf("  Manager:      %s", tool),
		fmt.Sprintf("  Workdir:      %s", cfg.WorkDir),
		fmt.Sprintf("  Source tree:  %s", cfg.SrcDir()),
		fmt.Sprintf("  Python:       %s", cfg.PythonPin),
		fmt.Sprintf("  Jobs:         %d", buildJobs(cfg)),
		fmt.Sprintf("  Priority:     %s", cfg.Priority),
		fmt.Sprintf("  Qtenv:        %s", yesNo(cfg.WithQtenv)),
		fmt.Sprintf("  OSG:          %s", yesNo(cfg.WithOSG)),
	}

	if cfg.Checksum != "" {
		lines = append(lines, fmt.Sprintf("  Checksum:     %s", cfg.Checksum))
	} else {
		lines = append(lines, "  Checksum:     (not configured, verification skipped)")
	}

	lines = append(lines, "", color.Bold.Sprint("Dependency set (single resolution request)"), "")
	for _, dep := range dependencySet(cfg) {
		lines = append(lines, "  "+dep.Spec())
	}

	return RunPager("omnetup configuration", lines)
}
