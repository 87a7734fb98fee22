package omnetup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// buildJobs picks the make parallelism: an explicit override wins, otherwise
// the priority setting scales the host's logical core count.
func buildJobs(cfg *Config) int {
	if cfg.Jobs > 0 {
		return cfg.Jobs
	}
	switch cfg.Priority {
	case "idle":
		return max(runtime.NumCPU()/2, 1)
	case "superidle":
		return 1
	default: // "normal"
		return runtime.NumCPU()
	}
}

// runBuild invokes make inside the environment with host-core parallelism.
// TOOLCHAIN_BIN_DIR is exported for this command only, so the variable
// reference injected by the patch step resolves to the environment's
// toolchain directory.
func runBuild(ctx context.Context, cfg *Config, prefix string) error {
	if err := os.MkdirAll(cfg.LogDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logPath := filepath.Join(cfg.LogDir(), "build-log.txt")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create build log: %w", err)
	}
	defer logFile.Close()

	jobs := buildJobs(cfg)
	colArrow.Print("-> ")
	colSuccess.Printf("Building with make -j%d\n", jobs)

	cmd := runInEnv(ctx, cfg, "make", fmt.Sprintf("-j%d", jobs))
	cmd.Dir = cfg.SrcDir()
	cmd.Env = append(os.Environ(), "TOOLCHAIN_BIN_DIR="+filepath.Join(prefix, "bin"))
	out := io.MultiWriter(os.Stdout, logFile)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := UserExec.Run(cmd); err != nil {
		return fmt.Errorf("build failed (see %s): %w", logPath, err)
	}
	return nil
}
