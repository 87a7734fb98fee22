package omnetup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// releasesURL points at the GitHub releases API; a variable so tests can
// stand in a local server.
var releasesURL = "https://api.github.com/repos/omnetpp/omnetpp/releases/latest"

type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadUrl string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// fetchLatestRelease queries the releases feed for the newest tag.
func fetchLatestRelease(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := newHttpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("release query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("release query failed with status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to decode release feed: %w", err)
	}
	return &rel, nil
}

// releaseVersion strips the repo's tag prefix, e.g. omnetpp-6.2.0 -> 6.2.0.
func releaseVersion(tag string) string {
	return strings.TrimPrefix(tag, "omnetpp-")
}

// compareVersions orders dotted numeric versions; non-numeric segments
// compare lexically.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv string
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		ai, aErr := strconv.Atoi(av)
		bi, bErr := strconv.Atoi(bv)
		if aErr == nil && bErr == nil {
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
			continue
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// checkForUpdate reports whether a newer release than the configured version
// is available.
func checkForUpdate(ctx context.Context, cfg *Config) error {
	colArrow.Print("-> ")
	colSuccess.Printf("Checking for releases newer than %s\n", cfg.Version)

	rel, err := fetchLatestRelease(ctx)
	if err != nil {
		return err
	}

	latest := releaseVersion(rel.TagName)
	switch compareVersions(latest, cfg.Version) {
	case 1:
		colArrow.Print("-> ")
		colNote.Printf("Newer release available: %s (configured: %s)\n", latest, cfg.Version)
		for _, asset := range rel.Assets {
			if strings.Contains(asset.Name, "macos-aarch64") {
				cPrintf(colInfo, "   %s (%d bytes)\n   %s\n", asset.Name, asset.Size, asset.BrowserDownloadUrl)
			}
		}
	default:
		colArrow.Print("-> ")
		colSuccess.Printf("Configured version %s is up to date.\n", cfg.Version)
	}
	return nil
}
