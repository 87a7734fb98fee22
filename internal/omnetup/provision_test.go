package omnetup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencySpec(t *testing.T) {
	assert.Equal(t, "cmake", Dependency{Name: "cmake"}.Spec())
	assert.Equal(t, "python=3.12", Dependency{Name: "python", Constraint: "3.12"}.Spec())
}

func TestDependencySetBase(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.WithQtenv = false
	cfg.WithOSG = false

	names := make([]string, 0)
	for _, d := range dependencySet(cfg) {
		names = append(names, d.Name)
	}

	assert.Contains(t, names, "python")
	assert.Contains(t, names, "bison")
	assert.Contains(t, names, "flex")
	assert.Contains(t, names, "clang_osx-arm64")
	assert.Contains(t, names, "clangxx_osx-arm64")
	assert.NotContains(t, names, "qt-main")
	assert.NotContains(t, names, "openscenegraph")
}

func TestDependencySetToggles(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.WithQtenv = true
	cfg.WithOSG = true

	names := make([]string, 0)
	for _, d := range dependencySet(cfg) {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "qt-main")
	assert.Contains(t, names, "openscenegraph")
}

func TestDependencySetPinsPython(t *testing.T) {
	cfg := testConfig(t, map[string]string{"OMNETUP_PYTHON": "3.11"})
	deps := dependencySet(cfg)
	require.Equal(t, "python", deps[0].Name)
	assert.Equal(t, "python=3.11", deps[0].Spec())
}

func TestCreateArgs(t *testing.T) {
	cfg := testConfig(t, map[string]string{"OMNETUP_ENV": "lab"})
	cfg.WithQtenv = false
	cfg.WithOSG = false

	args := createArgs(cfg)
	require.Greater(t, len(args), 4)
	assert.Equal(t, []string{"create", "-n", "lab", "-y"}, args[:4])
	assert.Contains(t, args, "python="+cfg.PythonPin)

	// One invocation carries the whole set: count matches the dependency set.
	assert.Len(t, args, 4+len(dependencySet(cfg)))
}

func TestEnvListContains(t *testing.T) {
	raw := []byte(`{"envs":["/opt/micromamba","/opt/micromamba/envs/omnet","/opt/micromamba/envs/other"]}`)

	found, err := envListContains(raw, "omnet")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = envListContains(raw, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEnvListContainsBadJSON(t *testing.T) {
	_, err := envListContains([]byte("not json"), "omnet")
	assert.Error(t, err)
}

func TestRunInEnvWrapsCommand(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"OMNETUP_ENV":  "lab",
		"OMNETUP_TOOL": "",
	})
	cfg.Tool = "micromamba"

	cmd := runInEnv(t.Context(), cfg, "make", "-j4")
	assert.Equal(t, []string{"micromamba", "run", "-n", "lab", "make", "-j4"}, cmd.Args)
}

func TestRequirementsPath(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"OMNETUP_VERSION": "6.2.0",
		"OMNETUP_WORKDIR": "/work",
	})
	assert.Equal(t, "/work/omnetpp-6.2.0/python/requirements.txt", requirementsPath(cfg))
}

func TestInstallTreeRequirementsMissingManifest(t *testing.T) {
	cfg := testConfig(t, nil)
	err := installTreeRequirements(t.Context(), cfg)
	assert.ErrorContains(t, err, "requirements manifest not found")
}
