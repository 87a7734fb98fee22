package omnetup

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"6.2.0", "6.2.0", 0},
		{"6.1.0", "6.2.0", -1},
		{"6.2.1", "6.2.0", 1},
		{"6.10.0", "6.9.0", 1},
		{"6.2", "6.2.0", 0},
		{"7.0.0", "6.2.0", 1},
		{"6.2.0pre1", "6.2.0pre2", -1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, compareVersions(c.a, c.b), "%s vs %s", c.a, c.b)
	}
}

func TestReleaseVersion(t *testing.T) {
	assert.Equal(t, "6.2.0", releaseVersion("omnetpp-6.2.0"))
	assert.Equal(t, "v1.0", releaseVersion("v1.0"))
}

func TestFetchLatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"tag_name": "omnetpp-6.3.0",
			"assets": [
				{"name": "omnetpp-6.3.0-macos-aarch64.tgz",
				 "browser_download_url": "https://example.com/omnetpp-6.3.0-macos-aarch64.tgz",
				 "size": 123456}
			]
		}`))
	}))
	defer srv.Close()

	oldURL := releasesURL
	releasesURL = srv.URL
	defer func() { releasesURL = oldURL }()

	rel, err := fetchLatestRelease(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "omnetpp-6.3.0", rel.TagName)
	require.Len(t, rel.Assets, 1)
	assert.Equal(t, "omnetpp-6.3.0-macos-aarch64.tgz", rel.Assets[0].Name)
	assert.Equal(t, int64(123456), rel.Assets[0].Size)
}

func TestFetchLatestReleaseBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	oldURL := releasesURL
	releasesURL = srv.URL
	defer func() { releasesURL = oldURL }()

	_, err := fetchLatestRelease(t.Context())
	assert.ErrorContains(t, err, "release query failed with status")
}
