package omnetup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"
)

func newHttpClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Default TLS handshake timeout is 10s; slow release mirrors need more.
	transport.TLSHandshakeTimeout = 30 * time.Second

	return &http.Client{
		Transport: transport,
		Timeout:   600 * time.Second, // release archives run into the hundreds of MB
	}
}

type downloadOptions struct {
	Quiet bool // Quiet suppresses all stdout/stderr/progress output
}

// downloadFile downloads a URL into destFile. A flock-guarded lock file
// prevents two invocations racing on the same target.
func downloadFile(url, destFile string) error {
	return downloadFileWithOptions(url, destFile, downloadOptions{})
}

func downloadFileWithOptions(url, destFile string, opt downloadOptions) error {
	if err := os.MkdirAll(filepath.Dir(destFile), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", destFile, err)
	}
	lockPath := destFile + ".lock"

	lFile, err := os.Create(lockPath)
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer lFile.Close()

	// Blocks if another invocation is already downloading this file.
	if err := unix.Flock(int(lFile.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock for download: %w", err)
	}
	defer unix.Flock(int(lFile.Fd()), unix.LOCK_UN)

	// Now that we hold the lock, check again: the file may have appeared
	// while we were waiting.
	if _, err := os.Stat(destFile); err == nil {
		debugf("File %s appeared after acquiring lock, skipping download.\n", destFile)
		_ = os.Remove(lockPath)
		return nil
	}

	defer func() {
		if _, err := os.Stat(destFile); err == nil {
			_ = os.Remove(lockPath)
		}
	}()

	debugf("Downloading %s -> %s\n", url, destFile)

	// --- Primary choice: aria2c, a multi-connection downloader ---
	if _, err := exec.LookPath("aria2c"); err == nil {
		args := []string{
			"-x", "8", "-s", "8",
			"-d", filepath.Dir(destFile),
			"-o", filepath.Base(destFile),
			"--auto-file-renaming=false",
			"--allow-overwrite=true",
		}
		if opt.Quiet {
			args = append(args, "-q")
		} else {
			args = append(args, "--console-log-level=warn")
		}
		args = append(args, url)
		cmd := exec.Command("aria2c", args...)
		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Run(); err == nil {
			debugf("Download successful with aria2c.\n")
			return nil
		}
		debugf("aria2c failed, falling back to curl\n")
	} else {
		debugf("aria2c not found, trying curl\n")
	}

	// --- Fallback 1: curl ---
	if _, err := exec.LookPath("curl"); err == nil {
		args := []string{"-L", "--fail", "-o", destFile}
		if opt.Quiet {
			args = append(args, "-sS")
		} else {
			args = append(args, "-#")
		}
		args = append(args, url)
		cmd := exec.Command("curl", args...)
		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Run(); err == nil {
			debugf("Download successful with curl.\n")
			return nil
		}
		debugf("curl failed, falling back to wget\n")
	} else {
		debugf("curl not found, trying wget\n")
	}

	// --- Fallback 2: wget ---
	if _, err := exec.LookPath("wget"); err == nil {
		args := []string{"-O", destFile}
		if opt.Quiet {
			args = append([]string{"-q"}, args...)
		} else {
			args = append([]string{"-nv"}, args...)
		}
		args = append(args, url)
		cmd := exec.Command("wget", args...)
		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Run(); err == nil {
			debugf("Download successful with wget.\n")
			return nil
		}
		debugf("wget failed, falling back to native Go HTTP client\n")
	} else {
		debugf("wget not found, using native Go HTTP client\n")
	}

	// --- Fallback 3: native Go HTTP client ---
	return downloadNative(url, destFile, opt)
}

// downloadNative fetches url with the built-in HTTP client and a progress bar.
func downloadNative(url, destFile string, opt downloadOptions) error {
	client := newHttpClient()

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("native http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	out, err := os.Create(destFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destFile, err)
	}
	defer out.Close()

	var dst io.Writer = out
	if !opt.Quiet {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(destFile))
		dst = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("failed to write to destination file: %w", err)
	}

	debugf("Download successful with native Go HTTP client.\n")
	return nil
}

// fetchArchive downloads the release archive into the workdir unless it is
// already present, then verifies its integrity when a checksum is configured.
func fetchArchive(ctx context.Context, cfg *Config) error {
	dest := cfg.ArchivePath()

	if _, err := os.Stat(dest); err == nil {
		colArrow.Print("-> ")
		colSuccess.Printf("Archive already present: %s\n", cfg.ArchiveName())
		return verifyIfConfigured(cfg, dest)
	}

	url := cfg.ArchiveURL()
	colArrow.Print("-> ")
	colSuccess.Printf("Fetching archive: %s\n", cfg.ArchiveName())

	var err error
	if strings.HasPrefix(url, "s3://") {
		err = fetchFromMirror(ctx, cfg, url, dest)
	} else {
		err = downloadFile(url, dest)
	}
	if err != nil {
		// Remove the partial file so a corrupt download is never mistaken
		// for a cached archive on the next run.
		os.Remove(dest)
		return fmt.Errorf("failed to download %s: %w", url, err)
	}

	return verifyIfConfigured(cfg, dest)
}

func verifyIfConfigured(cfg *Config, path string) error {
	if cfg.Checksum == "" {
		debugf("No checksum configured, skipping verification for %s\n", path)
		return nil
	}
	if err := verifyArchive(path, cfg.Checksum); err != nil {
		os.Remove(path)
		return err
	}
	colArrow.Print("-> ")
	colSuccess.Println("Archive checksum verified")
	return nil
}
