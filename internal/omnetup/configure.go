package omnetup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// configureOverrides selects the compiler and search-path injections for the
// configure step. Everything points into the provisioned environment so its
// toolchain and libraries shadow whatever the bare host carries.
func configureOverrides(prefix string) map[string]string {
	libDir := filepath.Join(prefix, "lib")
	return map[string]string{
		"CC":      filepath.Join(prefix, "bin", "clang"),
		"CXX":     filepath.Join(prefix, "bin", "clang++"),
		"CFLAGS":  "-I" + filepath.Join(prefix, "include"),
		"LDFLAGS": fmt.Sprintf("-L%s -Wl,-rpath,%s", libDir, libDir),
	}
}

// configureCommand renders the single configure invocation string with the
// overrides prepended and single quotes escaped for the shell.
func configureCommand(cfg *Config, prefix string) string {
	overrides := configureOverrides(prefix)

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		// Escape single quotes for the command string
		v := strings.ReplaceAll(overrides[k], "'", "'\\''")
		fmt.Fprintf(&b, "%s='%s' ", k, v)
	}

	b.WriteString("./configure")
	fmt.Fprintf(&b, " WITH_QTENV=%s", yesNo(cfg.WithQtenv))
	fmt.Fprintf(&b, " WITH_OSG=%s", yesNo(cfg.WithOSG))
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// runConfigure executes the external configure step inside the environment,
// mirroring its output into the configure log.
func runConfigure(ctx context.Context, cfg *Config, prefix string) error {
	if err := os.MkdirAll(cfg.LogDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logPath := filepath.Join(cfg.LogDir(), "configure-log.txt")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create configure log: %w", err)
	}
	defer logFile.Close()

	cmdStr := configureCommand(cfg, prefix)
	debugf("Configure command: %s\n", cmdStr)

	colArrow.Print("-> ")
	colSuccess.Println("Running configure")

	cmd := runInEnv(ctx, cfg, "sh", "-c", cmdStr)
	cmd.Dir = cfg.SrcDir()
	out := io.MultiWriter(os.Stdout, logFile)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := UserExec.Run(cmd); err != nil {
		return fmt.Errorf("configure failed (see %s): %w", logPath, err)
	}
	return nil
}
