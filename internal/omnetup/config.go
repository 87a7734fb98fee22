package omnetup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultVersion = "6.2.0"
	defaultEnvName = "omnet"
	defaultPython  = "3.12"

	// %s is the release version, second %s the archive filename.
	releaseURLTemplate = "https://github.com/omnetpp/omnetpp/releases/download/omnetpp-%s/%s"
)

// Config holds the resolved workflow settings. Every step receives it
// explicitly; nothing is exported into the ambient process environment.
type Config struct {
	Values map[string]string

	Version    string
	EnvName    string
	WorkDir    string
	Tool       string // conda-compatible manager, resolved by preflight
	PythonPin  string
	Checksum   string // expected BLAKE3 of the archive, empty disables the check
	Jobs       int    // 0 means derive from core count and priority
	Priority   string // normal, idle, superidle
	WithQtenv  bool
	WithOSG    bool
	archiveURL string
}

// loadConfig reads the key=value config file and applies env overrides.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	// Attempt to read the file; a missing file is not an error.
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	mergeEnvOverrides(cfg)

	return cfg, nil
}

// Merge OMNETUP_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "OMNETUP_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}
}

func initConfig(cfg *Config) error {
	cfg.Version = cfg.Values["OMNETUP_VERSION"]
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}

	cfg.EnvName = cfg.Values["OMNETUP_ENV"]
	if cfg.EnvName == "" {
		cfg.EnvName = defaultEnvName
	}

	cfg.WorkDir = cfg.Values["OMNETUP_WORKDIR"]
	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}
		cfg.WorkDir = wd
	}

	cfg.Tool = cfg.Values["OMNETUP_TOOL"]

	cfg.PythonPin = cfg.Values["OMNETUP_PYTHON"]
	if cfg.PythonPin == "" {
		cfg.PythonPin = defaultPython
	}

	cfg.Checksum = strings.ToLower(cfg.Values["OMNETUP_CHECKSUM"])

	if jobs := cfg.Values["OMNETUP_JOBS"]; jobs != "" {
		n, err := strconv.Atoi(jobs)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid OMNETUP_JOBS value: %q", jobs)
		}
		cfg.Jobs = n
	}

	cfg.Priority = cfg.Values["OMNETUP_PRIORITY"]
	if cfg.Priority == "" {
		cfg.Priority = "normal"
	}

	cfg.WithQtenv = true
	if v := cfg.Values["OMNETUP_QTENV"]; v == "0" || strings.EqualFold(v, "no") {
		cfg.WithQtenv = false
	}
	cfg.WithOSG = false
	if v := cfg.Values["OMNETUP_OSG"]; v == "1" || strings.EqualFold(v, "yes") {
		cfg.WithOSG = true
	}

	cfg.archiveURL = cfg.Values["OMNETUP_URL"]

	Debug = cfg.Values["OMNETUP_DEBUG"] == "1"

	return nil
}

// ArchiveName returns the release archive filename for the configured version.
func (c *Config) ArchiveName() string {
	return fmt.Sprintf("omnetpp-%s-macos-aarch64.tgz", c.Version)
}

// ArchiveURL is the download URL: the configured override, or the canonical
// release URL derived from the version.
func (c *Config) ArchiveURL() string {
	if c.archiveURL != "" {
		return c.archiveURL
	}
	return fmt.Sprintf(releaseURLTemplate, c.Version, c.ArchiveName())
}

// ArchivePath is the workdir-relative download target.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.WorkDir, c.ArchiveName())
}

// SrcDir is the extraction directory produced by unpacking the archive.
func (c *Config) SrcDir() string {
	return filepath.Join(c.WorkDir, "omnetpp-"+c.Version)
}

// LogDir holds the configure and build logs.
func (c *Config) LogDir() string {
	return filepath.Join(c.WorkDir, "logs")
}
