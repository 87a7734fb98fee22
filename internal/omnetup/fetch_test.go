package omnetup

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, extra map[string]string) *Config {
	t.Helper()
	values := map[string]string{
		"OMNETUP_VERSION": "6.2.0",
		"OMNETUP_WORKDIR": t.TempDir(),
	}
	for k, v := range extra {
		values[k] = v
	}
	cfg := &Config{Values: values}
	require.NoError(t, initConfig(cfg))
	return cfg
}

func TestFetchArchiveSkipsWhenPresent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := testConfig(t, map[string]string{"OMNETUP_URL": srv.URL + "/archive.tgz"})
	require.NoError(t, os.WriteFile(cfg.ArchivePath(), []byte("cached archive"), 0o644))

	require.NoError(t, fetchArchive(t.Context(), cfg))

	assert.Zero(t, hits.Load(), "fetch must not touch the network when the archive exists")

	content, err := os.ReadFile(cfg.ArchivePath())
	require.NoError(t, err)
	assert.Equal(t, "cached archive", string(content))
}

func TestDownloadNative(t *testing.T) {
	payload := []byte("release archive bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "archive.tgz")
	require.NoError(t, downloadNative(srv.URL, dest, downloadOptions{Quiet: true}))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownloadNativeFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "archive.tgz")
	err := downloadNative(srv.URL, dest, downloadOptions{Quiet: true})
	assert.ErrorContains(t, err, "download failed with status")
}

func TestVerifyIfConfiguredMismatchRemovesFile(t *testing.T) {
	cfg := testConfig(t, map[string]string{"OMNETUP_CHECKSUM": "deadbeef"})
	require.NoError(t, os.WriteFile(cfg.ArchivePath(), []byte("whatever"), 0o644))

	err := verifyIfConfigured(cfg, cfg.ArchivePath())
	require.ErrorContains(t, err, "checksum mismatch")

	_, statErr := os.Stat(cfg.ArchivePath())
	assert.True(t, os.IsNotExist(statErr), "corrupt archive must not be left behind")
}

func TestVerifyIfConfiguredAcceptsMatchingChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.tgz")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	sum, err := hashFile(path)
	require.NoError(t, err)

	cfg := testConfig(t, map[string]string{"OMNETUP_CHECKSUM": sum})
	assert.NoError(t, verifyIfConfigured(cfg, path))
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://mirror/releases/omnetpp-6.2.0.tgz")
	require.NoError(t, err)
	assert.Equal(t, "mirror", bucket)
	assert.Equal(t, "releases/omnetpp-6.2.0.tgz", key)

	_, _, err = parseS3URL("https://example.com/x.tgz")
	assert.Error(t, err)

	_, _, err = parseS3URL("s3://bucketonly")
	assert.Error(t, err)
}
