package omnetup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMakefileInc = `CC = arm64-apple-darwin20.0.0-clang
CXX = arm64-apple-darwin20.0.0-clang++
LDFLAGS = -Wl,-no_warn_duplicate_libraries -L/lib
AR = arm64-apple-darwin20.0.0-ar
`

func TestApplyPatchRules(t *testing.T) {
	patched, results := applyPatchRules(sampleMakefileInc, makefilePatchRules)

	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].Count)
	assert.Equal(t, 1, results[1].Count)

	assert.NotContains(t, patched, "arm64-apple-darwin20.0.0-")
	assert.NotContains(t, patched, "-no_warn_duplicate_libraries")
	assert.Contains(t, patched, "CC = $(TOOLCHAIN_BIN_DIR)/clang\n")
	assert.Contains(t, patched, "AR = $(TOOLCHAIN_BIN_DIR)/ar\n")
}

func TestApplyPatchRulesIsIdempotent(t *testing.T) {
	once, _ := applyPatchRules(sampleMakefileInc, makefilePatchRules)
	twice, results := applyPatchRules(once, makefilePatchRules)

	assert.Equal(t, once, twice)
	for _, res := range results {
		assert.Zero(t, res.Count, "second application should find nothing to replace")
	}
}

func TestApplyPatchRulesReportsNotFound(t *testing.T) {
	_, results := applyPatchRules("nothing to see here\n", makefilePatchRules)
	require.Len(t, results, 2)
	assert.Zero(t, results[0].Count)
	assert.Zero(t, results[1].Count)
}

func TestPatchFileWritesBackup(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Makefile.inc")
	require.NoError(t, os.WriteFile(target, []byte(sampleMakefileInc), 0o644))

	results, err := patchFile(target, makefilePatchRules)
	require.NoError(t, err)
	assert.Positive(t, results[0].Count)

	backup, err := os.ReadFile(target + ".bak")
	require.NoError(t, err)
	assert.Equal(t, sampleMakefileInc, string(backup), "backup must equal the pre-patch content")

	patched, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotContains(t, string(patched), "arm64-apple-darwin20.0.0-")
}

func TestPatchFileTwiceKeepsContentStable(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Makefile.inc")
	require.NoError(t, os.WriteFile(target, []byte(sampleMakefileInc), 0o644))

	_, err := patchFile(target, makefilePatchRules)
	require.NoError(t, err)
	first, err := os.ReadFile(target)
	require.NoError(t, err)

	_, err = patchFile(target, makefilePatchRules)
	require.NoError(t, err)
	second, err := os.ReadFile(target)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	// The backup now reflects the content before the second (no-op) patch.
	backup, err := os.ReadFile(target + ".bak")
	require.NoError(t, err)
	assert.Equal(t, string(first), string(backup))
}

func TestPatchFileMissingTarget(t *testing.T) {
	_, err := patchFile(filepath.Join(t.TempDir(), "absent.inc"), makefilePatchRules)
	assert.Error(t, err)
}
