package omnetup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Dependency is one entry of the fixed dependency set, optionally carrying
// a version constraint.
type Dependency struct {
	Name       string
	Constraint string
}

// Spec renders the dependency in the form the resolver expects.
func (d Dependency) Spec() string {
	if d.Constraint == "" {
		return d.Name
	}
	return d.Name + "=" + d.Constraint
}

// dependencySet returns the fixed set installed into the environment. The
// whole set is handed to the resolver as one request so versions are solved
// jointly instead of order-dependently.
func dependencySet(cfg *Config) []Dependency {
	deps := []Dependency{
		{Name: "python", Constraint: cfg.PythonPin},
		{Name: "cmake"},
		{Name: "pkg-config"},
		{Name: "make"},
		{Name: "bison"},
		{Name: "flex"},
		{Name: "perl"},
		{Name: "ccache"},
		{Name: "clang_osx-arm64"},
		{Name: "clangxx_osx-arm64"},
		{Name: "zlib"},
		{Name: "libxml2"},
	}
	if cfg.WithQtenv {
		deps = append(deps, Dependency{Name: "qt-main"})
	}
	if cfg.WithOSG {
		deps = append(deps, Dependency{Name: "openscenegraph"})
	}
	return deps
}

// createArgs builds the single atomic create-and-install invocation.
func createArgs(cfg *Config) []string {
	args := []string{"create", "-n", cfg.EnvName, "-y"}
	for _, dep := range dependencySet(cfg) {
		args = append(args, dep.Spec())
	}
	return args
}

// envExists queries the manager for the named environment.
func envExists(ctx context.Context, cfg *Config) (bool, error) {
	cmd := exec.CommandContext(ctx, cfg.Tool, "env", "list", "--json")
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to list environments: %w", err)
	}
	return envListContains(out, cfg.EnvName)
}

// envListContains parses `env list --json` output. Both conda and micromamba
// report environment prefixes, so match on the path's base name.
func envListContains(raw []byte, name string) (bool, error) {
	var listing struct {
		Envs []string `json:"envs"`
	}
	if err := json.Unmarshal(raw, &listing); err != nil {
		return false, fmt.Errorf("failed to parse environment listing: %w", err)
	}
	for _, prefix := range listing.Envs {
		if filepath.Base(prefix) == name {
			return true, nil
		}
	}
	return false, nil
}

// runInEnv builds a command executed inside the provisioned environment, so
// the environment's toolchain and libraries take precedence over the host's.
func runInEnv(ctx context.Context, cfg *Config, name string, args ...string) *exec.Cmd {
	full := append([]string{"run", "-n", cfg.EnvName, name}, args...)
	return exec.CommandContext(ctx, cfg.Tool, full...)
}

// envPrefix resolves the environment's installation prefix.
func envPrefix(ctx context.Context, cfg *Config) (string, error) {
	cmd := runInEnv(ctx, cfg, "sh", "-c", "echo $CONDA_PREFIX")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve environment prefix: %w", err)
	}
	prefix := strings.TrimSpace(string(out))
	if prefix == "" {
		return "", fmt.Errorf("environment %s reported an empty prefix", cfg.EnvName)
	}
	return prefix, nil
}

// provisionEnv recreates the named environment from scratch. The outcome
// must not depend on prior run history: an existing environment is torn
// down unconditionally before the fresh create.
func provisionEnv(ctx context.Context, cfg *Config) error {
	exists, err := envExists(ctx, cfg)
	if err != nil {
		return err
	}
	if exists {
		colArrow.Print("-> ")
		colWarn.Printf("Removing existing environment: %s\n", cfg.EnvName)
		rmCmd := exec.CommandContext(ctx, cfg.Tool, "env", "remove", "-n", cfg.EnvName, "-y")
		if err := UserExec.Run(rmCmd); err != nil {
			return fmt.Errorf("failed to remove environment %s: %w", cfg.EnvName, err)
		}
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Creating environment %s with %d packages\n", cfg.EnvName, len(dependencySet(cfg)))
	createCmd := exec.CommandContext(ctx, cfg.Tool, createArgs(cfg)...)
	if err := UserExec.Run(createCmd); err != nil {
		return fmt.Errorf("environment resolution failed: %w", err)
	}

	// posix-ipc only ships via pip; installed with the environment's own
	// python so it lands inside the env, not the host site-packages.
	colArrow.Print("-> ")
	colSuccess.Println("Installing posix-ipc via pip")
	pipCmd := runInEnv(ctx, cfg, "python", "-m", "pip", "install", "posix-ipc")
	if err := UserExec.Run(pipCmd); err != nil {
		return fmt.Errorf("pip install posix-ipc failed: %w", err)
	}

	return nil
}

// requirementsPath is the manifest shipped inside the extracted source tree.
func requirementsPath(cfg *Config) string {
	return filepath.Join(cfg.SrcDir(), "python", "requirements.txt")
}

// installTreeRequirements installs the source tree's python requirements
// manifest into the environment. Must run after unpack: the manifest lives
// inside the extracted tree.
func installTreeRequirements(ctx context.Context, cfg *Config) error {
	manifest := requirementsPath(cfg)
	if _, err := os.Stat(manifest); err != nil {
		return fmt.Errorf("requirements manifest not found (did extraction succeed?): %w", err)
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Installing requirements from %s\n", manifest)
	cmd := runInEnv(ctx, cfg, "python", "-m", "pip", "install", "-r", manifest)
	if err := UserExec.Run(cmd); err != nil {
		return fmt.Errorf("requirements install failed: %w", err)
	}
	return nil
}
